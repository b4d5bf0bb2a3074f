package dashboard

import (
	"bytes"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/clusterview/clusterview/pkg/cidutil"
	clustererrors "github.com/clusterview/clusterview/pkg/errors"
	"github.com/clusterview/clusterview/pkg/httputil"
	"github.com/clusterview/clusterview/pkg/ipfs"
	"github.com/clusterview/clusterview/pkg/logging"
)

// maxUploadBytes bounds the in-memory portion of multipart uploads.
const maxUploadBytes = 64 << 20

// pinEntry is one row of the pin listing: pin metadata from the node plus
// best-effort CID details for the inspect view.
type pinEntry struct {
	cidutil.Info
	Type string `json:"type"`
}

// listPinsHandler returns the current pin set sorted by CID.
// Supports ?limit=N to cap the number of returned entries.
func (d *Dashboard) listPinsHandler(w http.ResponseWriter, r *http.Request) {
	pins, err := d.cluster.Pins(r.Context())
	if err != nil {
		d.logger.ComponentWarn(logging.ComponentCluster, "pin listing failed", zap.Error(err))
		clustererrors.WriteHTTPError(w,
			clustererrors.NewDirectoryUnavailableError(d.cfg.Cluster.APIURL, err),
			middleware.GetReqID(r.Context()))
		return
	}

	entries := make([]pinEntry, 0, len(pins))
	for cid, info := range pins {
		entries = append(entries, pinEntry{Info: cidutil.Describe(cid), Type: info.Type})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CID < entries[j].CID })

	total := len(entries)
	if limit := httputil.QueryParamInt(r, "limit", 0); limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"total": total,
		"count": len(entries),
		"pins":  entries,
	})
}

// addPinHandler uploads content to the node. Browsers send multipart forms
// with a "file" part; scripted clients may instead POST a JSON body of
// {filename, content_type, data_base64}.
func (d *Dashboard) addPinHandler(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		d.addPinMultipart(w, r)
		return
	}
	d.addPinJSON(w, r)
}

func (d *Dashboard) addPinMultipart(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		clustererrors.WriteHTTPError(w,
			clustererrors.NewValidationError("file", "invalid multipart form", err.Error()), reqID)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		clustererrors.WriteHTTPError(w,
			clustererrors.NewValidationError("file", "missing file part", nil), reqID)
		return
	}
	defer file.Close()

	res, err := d.cluster.Add(r.Context(), file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		d.writeClusterError(w, r, "add", err)
		return
	}

	d.logger.ComponentInfo(logging.ComponentCluster, "content added",
		zap.String("cid", res.Hash),
		zap.String("name", res.Name),
		zap.Int64("bytes", res.Bytes))

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"cid":  res.Hash,
		"name": res.Name,
		"size": res.Bytes,
	})
}

func (d *Dashboard) addPinJSON(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var body struct {
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
		DataB64     string `json:"data_base64"`
	}
	if err := httputil.DecodeJSONStrict(r, &body); err != nil || body.DataB64 == "" {
		clustererrors.WriteHTTPError(w,
			clustererrors.NewValidationError("body", "expected {filename, content_type, data_base64}", nil), reqID)
		return
	}

	data, err := httputil.DecodeBase64(body.DataB64)
	if err != nil {
		clustererrors.WriteHTTPError(w,
			clustererrors.NewValidationError("data_base64", "invalid base64 data", nil), reqID)
		return
	}
	if body.Filename == "" {
		body.Filename = "upload.bin"
	}

	res, err := d.cluster.Add(r.Context(), bytes.NewReader(data), body.Filename, body.ContentType)
	if err != nil {
		d.writeClusterError(w, r, "add", err)
		return
	}

	d.logger.ComponentInfo(logging.ComponentCluster, "content added",
		zap.String("cid", res.Hash),
		zap.String("name", res.Name),
		zap.Int64("bytes", res.Bytes))

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"cid":  res.Hash,
		"name": res.Name,
		"size": res.Bytes,
	})
}

// removePinHandler unpins a CID on the node
func (d *Dashboard) removePinHandler(w http.ResponseWriter, r *http.Request) {
	cid := chi.URLParam(r, "cid")
	if cid == "" {
		clustererrors.WriteHTTPError(w,
			clustererrors.NewValidationError("cid", "must not be empty", cid),
			middleware.GetReqID(r.Context()))
		return
	}

	removed, err := d.cluster.Unpin(r.Context(), cid)
	if err != nil {
		d.writeClusterError(w, r, "pin/rm", err)
		return
	}

	d.logger.ComponentInfo(logging.ComponentCluster, "pin removed", zap.String("cid", cid))
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

// gcHandler runs garbage collection on the node. An empty result means there
// was nothing to collect.
func (d *Dashboard) gcHandler(w http.ResponseWriter, r *http.Request) {
	res, err := d.cluster.GC(r.Context())
	if err != nil {
		d.writeClusterError(w, r, "repo/gc", err)
		return
	}

	if len(res.Removed) == 0 && len(res.Errors) == 0 {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"message": "nothing to collect",
			"count":   0,
		})
		return
	}

	d.logger.ComponentInfo(logging.ComponentCluster, "garbage collection completed",
		zap.Int("removed", len(res.Removed)),
		zap.Int("errors", len(res.Errors)))

	resp := map[string]any{
		"removed": res.Removed,
		"count":   len(res.Removed),
	}
	if len(res.Errors) > 0 {
		resp["errors"] = res.Errors
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// writeClusterError maps node API failures onto the error taxonomy. A status
// reply from the node keeps its text; anything else is a transport failure.
func (d *Dashboard) writeClusterError(w http.ResponseWriter, r *http.Request, op string, err error) {
	reqID := middleware.GetReqID(r.Context())

	d.logger.ComponentWarn(logging.ComponentCluster, "cluster operation failed",
		zap.String("op", op),
		zap.Error(err))

	var statusErr *ipfs.StatusError
	if errors.As(err, &statusErr) {
		clustererrors.WriteHTTPError(w,
			clustererrors.NewServiceError("cluster", statusErr.Body, statusErr.StatusCode, err), reqID)
		return
	}
	clustererrors.WriteHTTPError(w,
		clustererrors.NewUnreachableError(d.cfg.Cluster.APIURL, err), reqID)
}
