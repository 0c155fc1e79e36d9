package ledger

import "github.com/m04kA/SMC-LessonBookingService/pkg/dbmetrics"

type DBExecutor = dbmetrics.DBExecutor
