// Package openeo defines an abstract API to an openEO back-end.
//
// In most cases, applications will know of specific implementations of
// this API and will get an implementation of Backend from that
// implementation.  The REST layer in the restserver package talks only
// to these interfaces, and the canonical records defined here are the
// generation-agnostic shapes the restdata normalizers translate into
// version-specific wire documents.
//
// Records carry a fixed set of well-known fields plus an Extra map for
// extension fields.  Fields with zero values are treated as absent;
// the wire layers never render a missing value as an explicit null.
package openeo

import "time"

// Backend is the principal interface to an openEO back-end.
// Implementations of this interface provide a specific storage or
// processing system behind the versioned REST API.
type Backend interface {
	// Collections retrieves the collection catalog.
	Collections() CollectionCatalog

	// Jobs retrieves the batch job manager.
	Jobs() BatchJobs

	// Services retrieves the secondary web service manager.
	Services() SecondaryServices

	// Auth retrieves the credential checker for this back-end.
	Auth() Authenticator

	// FileFormats describes the file formats this back-end can read
	// and write.
	FileFormats() FileFormats

	// Evaluate runs a process graph synchronously and returns the
	// single result artifact.  The process document is the canonical
	// shape, a map with a "process_graph" key.  Actual evaluation is
	// the back-end's concern; this layer only moves the bytes.
	Evaluate(user string, process map[string]interface{}) (JobResult, error)

	// Summarize reports batch job counts grouped by status, for
	// monitoring.
	Summarize() ([]JobSummary, error)

	// HealthCheck reports a human-readable liveness message,
	// conventionally "OK".
	HealthCheck() string
}

// CollectionCatalog provides read access to the collections this
// back-end can serve data from.
type CollectionCatalog interface {
	// ListCollections returns every collection in the catalog, in a
	// stable order.  The records are canonical; summary projection
	// happens in the wire layer.
	ListCollections() ([]Collection, error)

	// GetCollection retrieves a single collection by id.  If no
	// collection exists with that id, returns an instance of
	// ErrNoSuchCollection as an error.
	GetCollection(id string) (Collection, error)
}

// CollectionWriter is implemented by catalogs that can be written at
// runtime.  The API itself never writes collections; this exists for
// administrative tooling that loads records into a back-end (see
// cmd/openeocp).
type CollectionWriter interface {
	// PutCollection stores a collection record, replacing any
	// existing record with the same id.
	PutCollection(c Collection) error
}

// BatchJobs manages asynchronous processing jobs.  All operations are
// scoped to the authenticated user: a user can never observe or affect
// another user's jobs through this interface.
type BatchJobs interface {
	// CreateJob stores a new job in "created" status and returns it.
	// The request must carry a process document; everything else is
	// optional.
	CreateJob(user string, req JobRequest) (BatchJob, error)

	// GetJob retrieves one of the user's jobs by id.  If the user has
	// no job with that id, returns an instance of ErrNoSuchJob.
	GetJob(user, id string) (BatchJob, error)

	// ListJobs returns all of the user's jobs, in a stable order.
	ListJobs(user string) ([]BatchJob, error)

	// DeleteJob removes a job and any results it produced.
	DeleteJob(user, id string) error

	// StartJob queues a created (or previously canceled) job for
	// processing.  Starting a job that is already queued or running
	// is a no-op.
	StartJob(user, id string) error

	// CancelJob stops processing a job, moving it to "canceled"
	// status.  Results produced so far are discarded.
	CancelJob(user, id string) error

	// Results returns the output artifacts of a finished job.  If the
	// job has not finished, returns ErrJobNotFinished.
	Results(user, id string) ([]JobResult, error)

	// Logs returns the job's log entries at or after the given
	// offset; an empty offset means from the beginning.
	Logs(user, id, offset string) ([]LogEntry, error)
}

// SecondaryServices manages persistent web services (WMTS and friends)
// derived from process graphs.  Unlike BatchJobs, services are not
// scoped to a user: the service routes predate authentication in the
// protocol and remain public.
type SecondaryServices interface {
	// ServiceTypes describes the service types this back-end can
	// instantiate, keyed by type name (e.g. "WMTS").
	ServiceTypes() map[string]ServiceType

	// CreateService instantiates a new secondary service.  The
	// requested type is matched case-insensitively against
	// ServiceTypes; an unknown type returns ErrServiceUnsupported.
	CreateService(req ServiceRequest) (Service, error)

	// GetService retrieves a service by id.  If no service exists
	// with that id, returns an instance of ErrNoSuchService.
	GetService(id string) (Service, error)

	// ListServices returns all services, in a stable order.
	ListServices() ([]Service, error)

	// UpdateService applies the non-empty fields of the request to an
	// existing service.
	UpdateService(id string, req ServiceRequest) error

	// RemoveService deletes a service.
	RemoveService(id string) error
}

// Authenticator checks credentials and tokens.  The verification
// mechanics (password stores, token signing) live entirely behind this
// interface; the REST layer only shuttles the strings.
type Authenticator interface {
	// AuthenticateBasic checks a username/password pair and returns
	// an access token for it, or ErrCredentialsInvalid.
	AuthenticateBasic(username, password string) (string, error)

	// VerifyToken resolves an access token to a user id, or returns
	// ErrTokenInvalid.
	VerifyToken(token string) (string, error)
}

// JobQueue is implemented by back-ends whose queued jobs can be driven
// by an external executor (see the runner package).  Backends that
// delegate processing elsewhere need not implement it.
type JobQueue interface {
	// ClaimQueuedJob atomically picks a queued job, moves it to
	// "running" status, and returns a reference to it.  The second
	// return is false when no job is queued.
	ClaimQueuedJob() (JobRef, bool, error)

	// FinishJob stores the results of a claimed job and moves it to
	// "finished" status.
	FinishJob(ref JobRef, results []JobResult) error

	// FailJob moves a claimed job to "error" status and appends the
	// message to its log.
	FailJob(ref JobRef, message string) error
}

// JobRef names one user's job, enough to operate on it through
// JobQueue.
type JobRef struct {
	User string
	ID   string
}

// JobStatus describes the lifecycle state of a batch job.
type JobStatus int

const (
	// JobCreated is the initial status of a stored but unstarted job.
	// Pre-1.0 API generations call this status "submitted" on the
	// wire; the rename happens in the wire layer, not here.
	JobCreated JobStatus = iota

	// JobQueued means the job has been started and is waiting for an
	// executor.
	JobQueued

	// JobRunning means an executor is processing the job.
	JobRunning

	// JobCanceled means the job was stopped on user request.
	JobCanceled

	// JobFinished means the job completed and its results are
	// available.
	JobFinished

	// JobError means the job failed; details are in its log.
	JobError
)

// Collection describes one data collection the back-end can serve.
// The well-known fields mirror the STAC-flavored fields the API
// exposes.  CubeDimensions and Summaries are the canonical (1.0-shape)
// homes of the datacube and band metadata; a back-end that only has
// pre-1.0-shaped metadata may supply Properties/OtherProperties
// instead and the wire layer will remap.  Extra holds any additional
// fields, including private ones whose names start with "_"; those
// never reach the wire.
type Collection struct {
	ID              string                   `mapstructure:"id"`
	Title           string                   `mapstructure:"title"`
	Description     string                   `mapstructure:"description"`
	License         string                   `mapstructure:"license"`
	Keywords        []string                 `mapstructure:"keywords"`
	Version         string                   `mapstructure:"version"`
	StacVersion     string                   `mapstructure:"stac_version"`
	StacExtensions  []string                 `mapstructure:"stac_extensions"`
	Providers       []map[string]interface{} `mapstructure:"providers"`
	Extent          map[string]interface{}   `mapstructure:"extent"`
	CubeDimensions  map[string]interface{}   `mapstructure:"cube:dimensions"`
	Summaries       map[string]interface{}   `mapstructure:"summaries"`
	Properties      map[string]interface{}   `mapstructure:"properties"`
	OtherProperties map[string]interface{}   `mapstructure:"other_properties"`
	Links           []Link                   `mapstructure:"links"`
	Extra           map[string]interface{}   `mapstructure:"-"`
}

// Link is a STAC-style hypermedia link.
type Link struct {
	Rel   string `json:"rel,omitempty"`
	Href  string `json:"href"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// BatchJob is the canonical record of an asynchronous processing job.
// Process is the canonical process document, a map carrying a
// "process_graph" key; pre-1.0 wire shapes unwrap it.
type BatchJob struct {
	ID          string
	Process     map[string]interface{}
	Status      JobStatus
	Created     time.Time
	Updated     time.Time
	Title       string
	Description string
	Plan        string
	Progress    *float64
	Costs       *float64
	Budget      *float64
	Options     map[string]interface{}
}

// JobRequest carries the user-settable fields for creating or updating
// a batch job.
type JobRequest struct {
	Process     map[string]interface{}
	Title       string
	Description string
	Plan        string
	Budget      *float64
	Options     map[string]interface{}
}

// GTiffMediaType is the media type of GeoTIFF artifacts, the output
// format back-ends produce when nothing else is asked for.
const GTiffMediaType = "image/tiff; application=geotiff"

// JobResult is one output artifact of a finished batch job (or of a
// synchronous evaluation).
type JobResult struct {
	Name      string
	MediaType string
	Content   []byte
}

// LogEntry is one line of a batch job's processing log.
type LogEntry struct {
	ID      string        `json:"id"`
	Level   string        `json:"level"`
	Message string        `json:"message"`
	Path    []interface{} `json:"path"`
}

// Service is the canonical record of a secondary web service.
type Service struct {
	ID            string
	Type          string
	URL           string
	Enabled       bool
	Process       map[string]interface{}
	Configuration map[string]interface{}
	Attributes    map[string]interface{}
	Title         string
	Description   string
	Plan          string
	Created       time.Time
	Costs         *float64
	Budget        *float64
}

// ServiceRequest carries the user-settable fields for creating or
// updating a secondary service.
type ServiceRequest struct {
	Type          string
	Process       map[string]interface{}
	Title         string
	Description   string
	Enabled       *bool
	Configuration map[string]interface{}
	Plan          string
	Budget        *float64
}

// ServiceType describes one kind of secondary service a back-end can
// instantiate: the configuration parameters it accepts and the process
// parameters it exposes.  The field layout matches the 1.0 wire shape;
// the wire layer reshapes it for earlier generations.
type ServiceType struct {
	Configuration     map[string]interface{}   `json:"configuration"`
	ProcessParameters []map[string]interface{} `json:"process_parameters"`
	Links             []Link                   `json:"links"`
}

// FileFormat describes one file format, in the shape the API reports.
type FileFormat struct {
	Title        string                 `json:"title,omitempty"`
	GISDataTypes []string               `json:"gis_data_types"`
	Parameters   map[string]interface{} `json:"parameters,omitempty"`
}

// FileFormats groups the formats a back-end accepts as input and can
// produce as output, keyed by format name.
type FileFormats struct {
	Input  map[string]FileFormat `json:"input"`
	Output map[string]FileFormat `json:"output"`
}

// JobSummary is one row of a Summarize() report.
type JobSummary struct {
	Status JobStatus
	Count  int
}
