// Package client contains the client library for a Strapi-style content
// backend exposed over HTTP/JSON.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Register/Login/Logout, generic CRUD on named models
//     (Create/All/Get/Update/Delete) and file operations (Files/File/Upload).
//  2. A concrete HTTP implementation (see HTTPClient). Every operation builds
//     a URL from the base address, hands it to a single dispatcher together
//     with the current Session, and decodes the response into either a
//     Record or a []Record.
//  3. A non-blocking facade (see Async and Future) for callers that prefer
//     continuations to blocking calls.
//
// # Sessions
//
// A Session is immutable. Register and Login replace it with an
// authenticated one whose transport adds "Accept: application/json" and
// "Authorization: Bearer <jwt>" to every request, redirects included.
// Logout replaces it with the empty session. A request keeps the session it
// started with.
//
// # Error Handling
//
// Only HTTP 200 counts as success. Failures are reported as:
//   - *TransportError: no response was received (errors.Is ErrUnavailable).
//   - *StatusError: any other status; matches ErrUnauthorized (401/403),
//     ErrNotFound (404) and ErrUnavailable (502/503/504) with errors.Is.
//   - *MalformedResponseError: a 200 whose body is not the expected shape
//     (errors.Is ErrMalformedResponse).
//
// Nothing is retried.
//
// See Also
//
//   - Interface: Client
//   - HTTP impl: HTTPClient, NewHTTPClient
//   - Uploads:   UploadItem, NewUploadItem, ProgressFunc
//   - Async:     Async, Future, Go
package client
