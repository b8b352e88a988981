package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type errResp struct {
	Err  string `json:"err"`
	Code string `json:"code"`
}

// HTTP serves the estimator as GET endpoints taking query parameters with the
// same names as the gRPC request fields.
type HTTP struct {
	est     *Estimator
	metrics *Metrics
	log     *zap.Logger
}

func NewHTTP(est *Estimator, metrics *Metrics) *HTTP {
	return &HTTP{est: est, metrics: metrics, log: est.log}
}

// Routes registers the endpoints on mux.
func (h *HTTP) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/reinforcement", h.handle(MethodReinforcement, h.est.reinforcement))
	mux.HandleFunc("/v1/quality", h.handle(MethodQuality, h.est.quality))
	mux.HandleFunc("/v1/bundle", h.handle(MethodBundle, h.est.bundle))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

type endpoint func(ctx context.Context, req map[string]any) (map[string]any, error)

func (h *HTTP) handle(method string, fn endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req := make(map[string]any, len(r.URL.Query()))
		for k, v := range r.URL.Query() {
			if len(v) > 0 {
				req[k] = strings.TrimSpace(v[0])
			}
		}

		resp, err := fn(r.Context(), req)
		code := Code(err)
		if h.metrics != nil {
			h.metrics.observe(method, code.String(), time.Since(begin))
		}

		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			w.WriteHeader(httpStatus(err))
			_ = json.NewEncoder(w).Encode(errResp{Err: err.Error(), Code: code.String()})
			return
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.log.Warn("write response", zap.String("method", method), zap.Error(err))
		}
	}
}
