package dashboard

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/clusterview/clusterview/pkg/dispatch"
	clustererrors "github.com/clusterview/clusterview/pkg/errors"
	"github.com/clusterview/clusterview/pkg/httputil"
	"github.com/clusterview/clusterview/pkg/logging"
)

// ChannelHeader carries the render channel chosen by the dispatcher so the UI
// can pick a viewer without sniffing the payload.
const ChannelHeader = "X-Clusterview-Channel"

// objectHandler fetches a pinned object through the dispatcher and serves it.
//
// Default response: payload bytes with Content-Type, Content-Disposition and
// the channel header set per classification. ?download=true forces an
// attachment disposition; ?format=json returns a JSON envelope with the
// payload base64-encoded instead of raw bytes.
func (d *Dashboard) objectHandler(w http.ResponseWriter, r *http.Request) {
	cid := chi.URLParam(r, "cid")

	result, err := d.dispatcher.FetchAndClassify(r.Context(), cid)
	if err != nil {
		d.logger.ComponentWarn(logging.ComponentDispatch, "object dispatch failed",
			zap.String("cid", cid),
			zap.String("code", clustererrors.GetErrorCode(err)),
			zap.Error(err))
		clustererrors.WriteHTTPError(w, err, middleware.GetReqID(r.Context()))
		return
	}

	if httputil.QueryParam(r, "format", "") == "json" {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"cid":          result.CID,
			"channel":      result.Channel,
			"filename":     result.Filename,
			"content_type": result.ContentType,
			"pin_type":     result.PinType,
			"size":         len(result.Body),
			"data_base64":  httputil.EncodeBase64(result.Body),
		})
		return
	}

	disposition := "inline"
	if result.Channel == dispatch.ChannelDownload || httputil.QueryParamBool(r, "download", false) {
		disposition = "attachment"
	}

	w.Header().Set(ChannelHeader, string(result.Channel))
	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Body)
}
