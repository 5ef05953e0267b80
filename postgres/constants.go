package postgres

const (
	// SQL table names:
	collectionTable = "collection"
	jobTable        = "job"
	jobLogTable     = "job_log"
	jobResultTable  = "job_result"
	serviceTable    = "service"

	// SQL column names:
	collectionID         = collectionTable + ".id"
	collectionSeq        = collectionTable + ".seq"
	collectionDoc        = collectionTable + ".doc"
	jobID                = jobTable + ".id"
	jobSeq               = jobTable + ".seq"
	jobOwner             = jobTable + ".owner"
	jobStatus            = jobTable + ".status"
	jobProcess           = jobTable + ".process"
	jobTitle             = jobTable + ".title"
	jobDescription       = jobTable + ".description"
	jobPlan              = jobTable + ".plan"
	jobBudget            = jobTable + ".budget"
	jobOptions           = jobTable + ".options"
	jobProgress          = jobTable + ".progress"
	jobCosts             = jobTable + ".costs"
	jobCreated           = jobTable + ".created"
	jobUpdated           = jobTable + ".updated"
	jobLogSeq            = jobLogTable + ".seq"
	jobLogJob            = jobLogTable + ".job_id"
	jobLogEntry          = jobLogTable + ".entry_id"
	jobLogLevel          = jobLogTable + ".level"
	jobLogMessage        = jobLogTable + ".message"
	jobLogPath           = jobLogTable + ".path"
	jobResultSeq         = jobResultTable + ".seq"
	jobResultJob         = jobResultTable + ".job_id"
	jobResultName        = jobResultTable + ".name"
	jobResultMediaType   = jobResultTable + ".media_type"
	jobResultContent     = jobResultTable + ".content"
	serviceID            = serviceTable + ".id"
	serviceSeq           = serviceTable + ".seq"
	serviceType          = serviceTable + ".type"
	serviceURL           = serviceTable + ".url"
	serviceEnabled       = serviceTable + ".enabled"
	serviceProcess       = serviceTable + ".process"
	serviceConfiguration = serviceTable + ".configuration"
	serviceAttributes    = serviceTable + ".attributes"
	serviceTitle         = serviceTable + ".title"
	serviceDescription   = serviceTable + ".description"
	servicePlan          = serviceTable + ".plan"
	serviceBudget        = serviceTable + ".budget"
	serviceCosts         = serviceTable + ".costs"
	serviceCreated       = serviceTable + ".created"
)
