// Package dispatch implements the object fetch and classification pipeline:
// membership validation against the live pin set, gateway retrieval, and
// content-type based output channel selection.
package dispatch

import (
	"context"
	"errors"
	"mime"
	"strings"

	"go.uber.org/zap"

	clustererrors "github.com/clusterview/clusterview/pkg/errors"
	"github.com/clusterview/clusterview/pkg/ipfs"
)

// Channel identifies the output channel for a retrieved object.
type Channel string

const (
	// ChannelText carries textual payloads rendered inline.
	ChannelText Channel = "text"
	// ChannelImage carries image payloads rendered inline with a caption.
	ChannelImage Channel = "image"
	// ChannelPDF carries PDF payloads offered as a download with the
	// canonical PDF media type.
	ChannelPDF Channel = "pdf"
	// ChannelDownload carries everything else as a generic download with
	// the observed media type.
	ChannelDownload Channel = "download"
)

// DefaultContentType is assumed when the gateway does not declare one.
const DefaultContentType = "application/octet-stream"

// Result is the outcome of a successful dispatch.
type Result struct {
	CID         string  `json:"cid"`
	Channel     Channel `json:"channel"`
	Filename    string  `json:"filename"`
	ContentType string  `json:"content_type"`
	PinType     string  `json:"pin_type,omitempty"`
	Body        []byte  `json:"-"`
	Text        string  `json:"-"` // decoded payload, set for the text channel only
}

// PinDirectory lists the cluster's currently pinned objects.
type PinDirectory interface {
	Pins(ctx context.Context) (ipfs.PinSet, error)
}

// ContentGateway serves raw object bytes by CID.
type ContentGateway interface {
	Fetch(ctx context.Context, cid string) (*ipfs.ObjectData, error)
}

// Config holds endpoint labels included in error details. Both are optional
// and default to generic labels.
type Config struct {
	DirectoryEndpoint string
	GatewayEndpoint   string
}

// Dispatcher validates identifiers against the live pin set, retrieves
// object bytes through the gateway, and classifies them into an output
// channel. It holds no mutable state and is safe for concurrent use.
type Dispatcher struct {
	directory PinDirectory
	gateway   ContentGateway
	cfg       Config
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher over the given collaborators.
func NewDispatcher(directory PinDirectory, gateway ContentGateway, cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.DirectoryEndpoint == "" {
		cfg.DirectoryEndpoint = "pin directory"
	}
	if cfg.GatewayEndpoint == "" {
		cfg.GatewayEndpoint = "content gateway"
	}

	return &Dispatcher{
		directory: directory,
		gateway:   gateway,
		cfg:       cfg,
		logger:    logger,
	}
}

// FetchAndClassify retrieves the object named by cid and classifies it into
// an output channel.
//
// The pin set is re-fetched on every call, never cached, so membership is
// checked against a fresh snapshot. The answer is still only as fresh as
// that snapshot: a concurrent unpin between the membership check and the
// gateway fetch surfaces as a retrieval failure, and the upstream API
// offers no transactional read to close that window.
func (d *Dispatcher) FetchAndClassify(ctx context.Context, cid string) (*Result, error) {
	if strings.TrimSpace(cid) == "" {
		return nil, clustererrors.NewValidationError("cid", "must not be empty", cid)
	}

	pins, err := d.directory.Pins(ctx)
	if err != nil {
		return nil, d.directoryError(err)
	}

	if !pins.Contains(cid) {
		d.logger.Debug("Rejected identifier missing from pin set", zap.String("cid", cid))
		return nil, clustererrors.NewNotPinnedError(cid)
	}

	obj, err := d.gateway.Fetch(ctx, cid)
	if err != nil {
		return nil, d.retrievalError(cid, err)
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}

	filename := DeriveFilename(cid, obj.Disposition, contentType)
	channel := Classify(contentType)

	// The PDF channel always advertises the canonical PDF type, regardless
	// of parameters the gateway attached
	if channel == ChannelPDF {
		contentType = "application/pdf"
	}

	result := &Result{
		CID:         cid,
		Channel:     channel,
		Filename:    filename,
		ContentType: contentType,
		PinType:     pins[cid].Type,
		Body:        obj.Body,
	}
	if channel == ChannelText {
		result.Text = string(obj.Body)
	}

	d.logger.Debug("Dispatched object",
		zap.String("cid", cid),
		zap.String("channel", string(channel)),
		zap.String("filename", filename),
		zap.Int("bytes", len(obj.Body)))

	return result, nil
}

// directoryError maps a pin listing failure. A status answer from the node
// and a transport failure both mean the directory is unavailable, but only
// the transport case carries an unreachable cause.
func (d *Dispatcher) directoryError(err error) error {
	var statusErr *ipfs.StatusError
	if errors.As(err, &statusErr) {
		return clustererrors.NewDirectoryUnavailableError(d.cfg.DirectoryEndpoint, err)
	}
	return clustererrors.NewDirectoryUnavailableError(d.cfg.DirectoryEndpoint,
		clustererrors.NewUnreachableError(d.cfg.DirectoryEndpoint, err))
}

// retrievalError maps a gateway failure. Status answers keep the gateway's
// error text and status code; transport failures carry an unreachable cause.
func (d *Dispatcher) retrievalError(cid string, err error) error {
	var statusErr *ipfs.StatusError
	if errors.As(err, &statusErr) {
		return clustererrors.NewRetrievalFailedError(cid, statusErr.Body, statusErr.StatusCode, err)
	}
	return clustererrors.NewRetrievalFailedError(cid, "", 0,
		clustererrors.NewUnreachableError(d.cfg.GatewayEndpoint, err))
}

// DeriveFilename returns the display filename for an object: the
// Content-Disposition filename parameter when present, otherwise the first
// 8 characters of the identifier joined with the content type's subtype.
func DeriveFilename(cid, disposition, contentType string) string {
	if name := dispositionFilename(disposition); name != "" {
		return name
	}

	prefix := cid
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return prefix + "." + subtype(contentType)
}

func dispositionFilename(disposition string) string {
	if disposition == "" {
		return ""
	}

	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}

	// Malformed headers that still carry filename= are honored with
	// surrounding quotes stripped
	if _, after, ok := strings.Cut(disposition, "filename="); ok {
		name := after
		if idx := strings.IndexByte(name, ';'); idx >= 0 {
			name = name[:idx]
		}
		return strings.Trim(strings.TrimSpace(name), `"`)
	}

	return ""
}

// subtype extracts the part after '/' from a media type, tolerating
// parameters and malformed values.
func subtype(contentType string) string {
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	} else if idx := strings.IndexByte(mediaType, ';'); idx >= 0 {
		mediaType = strings.TrimSpace(mediaType[:idx])
	}

	if idx := strings.LastIndexByte(mediaType, '/'); idx >= 0 {
		return mediaType[idx+1:]
	}
	return mediaType
}

// Classify selects the output channel for a content type. Priority order:
// text, image, PDF, then generic download.
func Classify(contentType string) Channel {
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	switch {
	case strings.HasPrefix(mediaType, "text/"):
		return ChannelText
	case strings.HasPrefix(mediaType, "image/"):
		return ChannelImage
	case mediaType == "application/pdf":
		return ChannelPDF
	default:
		return ChannelDownload
	}
}
