package errs

// API error codes returned in the response envelope.
const (
	CodeBadRequest          = "upgrade-analyzer.bad_request"
	CodeRunActive           = "upgrade-analyzer.run_active"
	CodeNothingToResume     = "upgrade-analyzer.nothing_to_resume"
	CodeRunNotFound         = "upgrade-analyzer.run_not_found"
	CodePatchNotFound       = "upgrade-analyzer.patch_not_found"
	CodeBackupNotFound      = "upgrade-analyzer.backup_not_found"
	CodeAnalysisUnavailable = "upgrade-analyzer.analysis_unavailable"
	CodeInternalServerError = "upgrade-analyzer.internal_server_error"
)
