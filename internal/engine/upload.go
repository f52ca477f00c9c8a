package engine

import "github.com/mark3labs/eeclientgen/internal/spec"

// Transport is how a function's request is sent.
type Transport int

const (
	// TransportForm is the default: POST with form encoded values.
	TransportForm Transport = iota
	// TransportMultipart is POST multipart/form-data carrying file payloads.
	TransportMultipart
	// TransportPut sends one file as the raw PUT body.
	TransportPut
	// TransportFileGet is GET answering a raw file instead of an envelope.
	TransportFileGet
)

func (t Transport) String() string {
	switch t {
	case TransportMultipart:
		return "multipart-post"
	case TransportPut:
		return "raw-put"
	case TransportFileGet:
		return "file-get"
	default:
		return "form-post"
	}
}

// Upload is the resolved transport of one function.
type Upload struct {
	Transport Transport
	// Payload holds the file parameters sent as body: every post-flagged
	// parameter for multipart, the first put-flagged one for PUT.
	Payload []spec.Parameter
	// Query holds the remaining parameters in declaration order, without the
	// api key and without any upload-flagged parameter.
	Query []spec.Parameter
}

// PayloadNames lists payload parameter names.
func (u Upload) PayloadNames() []string {
	names := make([]string, 0, len(u.Payload))
	for _, p := range u.Payload {
		names = append(names, p.Name)
	}
	return names
}

// Resolver is the shared UploadResolver.
type Resolver struct{}

func (Resolver) Resolve(f spec.Function) Upload {
	var up Upload
	var posts, puts []spec.Parameter
	for _, p := range f.Parameters {
		switch {
		case p.IsAPIKey():
		case p.IsFilePostUpload:
			posts = append(posts, p)
		case p.IsFilePutUpload:
			puts = append(puts, p)
		default:
			up.Query = append(up.Query, p)
		}
	}
	switch {
	case len(posts) > 0:
		up.Transport = TransportMultipart
		up.Payload = posts
	case len(puts) > 0:
		up.Transport = TransportPut
		up.Payload = puts[:1]
	case f.ReturnsFile():
		up.Transport = TransportFileGet
	default:
		up.Transport = TransportForm
	}
	return up
}
