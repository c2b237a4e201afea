package services

import "github.com/platefront/rms-backend/utils"

func logInfof(format string, args ...interface{}) {
	if utils.InfoLogger != nil {
		utils.InfoLogger.Printf(format, args...)
	}
}

func logErrorf(format string, args ...interface{}) {
	if utils.ErrorLogger != nil {
		utils.ErrorLogger.Printf(format, args...)
	}
}
