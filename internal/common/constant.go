// Package common contains constants and small helpers shared by the client
// library, the application services and the CLI.
package common

// Header names and values placed on outbound requests.
const (
	AuthorizationHeaderName = "Authorization"
	AcceptHeaderName        = "Accept"
	ContentTypeHeaderName   = "Content-Type"

	BearerPrefix    = "Bearer "
	ContentTypeJSON = "application/json"
)

// UploadFieldName is the multipart field every uploaded file is sent under.
const UploadFieldName = "files"
