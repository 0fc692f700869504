package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/gostrapi/internal/common"
)

// UploadItem is one file of an upload call.
type UploadItem struct {
	Data        []byte
	Name        string
	ContentType string
}

// NewUploadItem wraps data into an UploadItem with a unique file name and a
// MIME type sniffed from the content. The extension follows the detected
// type, e.g. "<uuid>.png".
func NewUploadItem(data []byte) UploadItem {
	mt := mimetype.Detect(data)
	return UploadItem{
		Data:        data,
		Name:        uuid.NewString() + mt.Extension(),
		ContentType: mt.String(),
	}
}

// NewUploadItems wraps every payload with NewUploadItem.
func NewUploadItems(files ...[]byte) []UploadItem {
	items := make([]UploadItem, 0, len(files))
	for _, f := range files {
		items = append(items, NewUploadItem(f))
	}
	return items
}

// Upload sends items as repeated "files" parts of one multipart request.
// progress, if not nil, is called with the fraction of the body sent; the
// values never decrease and the last one is 1.0 whenever Upload succeeds.
func (c *HTTPClient) Upload(ctx context.Context, items []UploadItem, progress ProgressFunc) ([]Record, error) {
	if len(items) == 0 {
		return nil, ErrEmptyUpload
	}

	payload, contentType, err := encodeMultipart(items)
	if err != nil {
		return nil, err
	}

	tracker := newProgressTracker(int64(len(payload)), progress)
	body := &requestBody{
		reader:      &progressReader{reader: bytes.NewReader(payload), tracker: tracker},
		contentType: contentType,
		length:      int64(len(payload)),
		getBody: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(payload)), nil
		},
	}

	c.logger.Debug(ctx, "uploading files", "count", len(items), "bytes", len(payload))

	records, err := dispatch[[]Record](ctx, c, c.Session(), http.MethodPost, c.baseURL+pathUpload, body)
	if err != nil {
		return nil, err
	}
	tracker.complete()
	return records, nil
}

// encodeMultipart builds the whole multipart body up front so an encoding
// failure is reported before anything is sent.
func encodeMultipart(items []UploadItem) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for i, item := range items {
		name := item.Name
		if name == "" {
			name = uuid.NewString()
		}
		ct := item.ContentType
		if ct == "" {
			ct = mimetype.Detect(item.Data).String()
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, common.UploadFieldName, name))
		h.Set(common.ContentTypeHeaderName, ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("%w: part %d: %w", ErrEncoding, i, err)
		}
		if _, err := part.Write(item.Data); err != nil {
			return nil, "", fmt.Errorf("%w: part %d: %w", ErrEncoding, i, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// progressTracker turns byte counts into fractions below 1.0 and serialises
// the calls to the user callback. Reads may happen on the transport goroutine while
// complete runs on the caller's.
type progressTracker struct {
	mu    sync.Mutex
	total int64
	sent  int64
	last  float64
	done  bool
	fn    ProgressFunc
}

func newProgressTracker(total int64, fn ProgressFunc) *progressTracker {
	return &progressTracker{total: total, last: -1, fn: fn}
}

func (t *progressTracker) add(n int) {
	if t.fn == nil || n <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.sent += int64(n)
	if t.sent >= t.total {
		// 1.0 is left to complete, which only runs on success.
		t.sent = t.total
		return
	}
	t.emit(float64(t.sent) / float64(t.total))
}

// complete reports 1.0 unless it has been reported already, and ignores any
// later reads, e.g. a body replay after a redirect.
func (t *progressTracker) complete() {
	if t.fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	if t.last < 1 {
		t.emit(1)
	}
}

func (t *progressTracker) emit(f float64) {
	if f <= t.last {
		return
	}
	t.last = f
	t.fn(f)
}

// progressReader counts the bytes read from reader.
type progressReader struct {
	reader  io.Reader
	tracker *progressTracker
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.tracker.add(n)
	}
	return n, err
}
