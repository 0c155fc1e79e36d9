package meetlink

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var linkPattern = regexp.MustCompile(`^https://meet\.google\.com/[a-z]{3}-[a-z]{4}-[a-z]{3}$`)

func TestGenerate(t *testing.T) {
	for i := 0; i < 50; i++ {
		assert.Regexp(t, linkPattern, Generate())
	}
}

func TestFromID_Deterministic(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Equal(t, FromID(id), FromID(id))
}
