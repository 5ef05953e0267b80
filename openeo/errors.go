package openeo

import (
	"errors"
	"fmt"
	"strings"
)

// ErrProcessGraphMissing is returned when a request that must carry a
// process graph does not, in whichever location the request's protocol
// generation expects it.
var ErrProcessGraphMissing = errors.New("No process graph was specified.")

// ErrJobNotFinished is returned from BatchJobs.Results() while the job
// has not yet reached finished status.
var ErrJobNotFinished = errors.New("Batch job has not finished computing the results yet.")

// ErrJobNotStarted is returned from operations that need a queued or
// running job, such as CancelJob on a job that was never started.
var ErrJobNotStarted = errors.New("Batch job must be started first.")

// ErrCredentialsInvalid is returned from
// Authenticator.AuthenticateBasic() when the username/password pair is
// rejected.
var ErrCredentialsInvalid = errors.New("Credentials are not correct.")

// ErrTokenInvalid is returned from Authenticator.VerifyToken() when
// the access token is unknown, malformed, or expired.
var ErrTokenInvalid = errors.New("Authorization token is invalid or expired.")

// ErrAuthRequired is returned by operations that need an authenticated
// user when the request carried no usable credentials.
var ErrAuthRequired = errors.New("Unauthorized.")

// ErrAuthSchemeInvalid is returned when a request carries credentials
// under an authorization scheme other than Basic or Bearer.
var ErrAuthSchemeInvalid = errors.New("Authentication method not supported.")

// ErrNoSuchCollection is returned by CollectionCatalog.GetCollection()
// when no collection has the requested id.
type ErrNoSuchCollection struct {
	ID string
}

func (err ErrNoSuchCollection) Error() string {
	return fmt.Sprintf("Collection %q does not exist.", err.ID)
}

// ErrNoSuchJob is returned by BatchJobs operations when the user has
// no job with the requested id.
type ErrNoSuchJob struct {
	ID string
}

func (err ErrNoSuchJob) Error() string {
	return fmt.Sprintf("The job %q does not exist.", err.ID)
}

// ErrNoSuchService is returned by SecondaryServices operations when
// the user has no service with the requested id.
type ErrNoSuchService struct {
	ID string
}

func (err ErrNoSuchService) Error() string {
	return fmt.Sprintf("Service %q does not exist.", err.ID)
}

// ErrServiceUnsupported is returned from
// SecondaryServices.CreateService() when the requested service type is
// not among the back-end's service types.
type ErrServiceUnsupported struct {
	Type string
}

func (err ErrServiceUnsupported) Error() string {
	return fmt.Sprintf("Secondary service type %q is not supported.", err.Type)
}

// ErrProcessUnsupported is returned from process registry lookups for
// ids that are unknown or only present as deprecated aliases.
type ErrProcessUnsupported struct {
	ID string
}

func (err ErrProcessUnsupported) Error() string {
	return fmt.Sprintf("Process %q is not supported.", err.ID)
}

// ErrIncompleteProcessSpec is returned when rendering a process spec
// that never declared a return value; such a spec must not reach the
// wire.
type ErrIncompleteProcessSpec struct {
	ID string
}

func (err ErrIncompleteProcessSpec) Error() string {
	return fmt.Sprintf("Process spec %q has no return value", err.ID)
}

// ErrVersionUnsupported is returned from VersionCatalog.Resolve() for
// version strings that are unknown or recognized but unsupported.  The
// message enumerates the advertised alternatives, in catalog order.
type ErrVersionUnsupported struct {
	Requested  string
	Advertised []string
}

func (err ErrVersionUnsupported) Error() string {
	return fmt.Sprintf("Unsupported version: %q. Available versions: %s",
		err.Requested, strings.Join(err.Advertised, ", "))
}

// ErrMissingIdentity is returned when a back-end record lacks its
// identity field and therefore cannot be rendered at all.
type ErrMissingIdentity struct {
	// Kind names the entity family, e.g. "collection".
	Kind string
}

func (err ErrMissingIdentity) Error() string {
	return fmt.Sprintf("Invalid %s metadata: no id field", err.Kind)
}
