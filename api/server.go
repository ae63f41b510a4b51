// Package api exposes a registry and its host group over HTTP. The caller
// identity is taken from the X-Caller header, authentication happens in
// front of this server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"time"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/unique/host"
	"github.com/MixinNetwork/unique/nft"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	HeaderCaller    = "X-Caller"
	HeaderRequestId = "X-Request-Id"
)

type Server struct {
	grp      *host.Group
	registry *nft.Registry
	router   *mux.Router
	timeout  time.Duration
}

func NewServer(grp *host.Group, registry *nft.Registry) *Server {
	s := &Server{
		grp:      grp,
		registry: registry,
		router:   mux.NewRouter(),
		timeout:  30 * time.Second,
	}
	grp.Metrics().Register(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "unique",
			Subsystem: "registry",
			Name:      "assets_total",
			Help:      "Number of live assets",
		}, func() float64 { return countToFloat(registry.Total()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "unique",
			Subsystem: "registry",
			Name:      "assets_burned",
			Help:      "Number of burned assets",
		}, func() float64 { return countToFloat(registry.Burned()) }),
	)

	r := s.router
	r.HandleFunc("/mint", s.handleMint).Methods(http.MethodPost)
	r.HandleFunc("/transfer", s.handleTransfer).Methods(http.MethodPost)
	r.HandleFunc("/burn", s.handleBurn).Methods(http.MethodPost)
	r.HandleFunc("/actions/{trace}", s.handleAction).Methods(http.MethodGet)
	r.HandleFunc("/assets/{asset}", s.handleAsset).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{account}/assets", s.handleAccountAssets).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(grp.Metrics().Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(sctx)
		if err != nil {
			logger.Printf("http.Shutdown() => %v\n", err)
		}
	}()
	logger.Printf("HTTP server listening on %s\n", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, act *host.Action) {
	act.Caller = r.Header.Get(HeaderCaller)
	if act.Caller == "" {
		writeError(w, http.StatusBadRequest, nft.ErrorCodeInvalidRequest, "missing "+HeaderCaller)
		return
	}
	if rid := r.Header.Get(HeaderRequestId); rid != "" {
		act.TraceId = host.UniqueTraceId(act.Caller, rid)
	} else {
		act.TraceId = host.NewTraceId()
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	_, err := s.grp.Submit(ctx, act)
	if err != nil {
		writeError(w, http.StatusBadRequest, nft.ErrorCodeInvalidRequest, err.Error())
		return
	}
	done, err := s.grp.Wait(ctx, act.TraceId)
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, nft.ErrorCodeInternal, err.Error())
		return
	}
	writeJSON(w, statusForCode(done.ErrorCode), viewAction(done))
}

func statusForCode(code string) int {
	switch code {
	case "":
		return http.StatusOK
	case nft.ErrorCodeAssetNotFound:
		return http.StatusNotFound
	case nft.ErrorCodeDuplicateAsset, nft.ErrorCodeCapacityGlobal, nft.ErrorCodeCapacityPerOwner:
		return http.StatusConflict
	case nft.ErrorCodeNotAuthorized:
		return http.StatusForbidden
	case nft.ErrorCodeInvalidRequest:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		logger.Verbosef("api.writeJSON() => %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"code": code, "error": msg})
}

func countToFloat(c nft.Count) float64 {
	if c.IsUint64() {
		return float64(c.Uint64())
	}
	f, _ := new(big.Float).SetString(c.String())
	v, _ := f.Float64()
	return v
}
