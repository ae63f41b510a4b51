package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MixinNetwork/unique/host"
	"github.com/MixinNetwork/unique/nft"
	"github.com/gorilla/mux"
)

type mintRequest struct {
	Owner    string `json:"owner"`
	Info     []byte `json:"info"`
	Registry string `json:"registry,omitempty"`
	Id       string `json:"id,omitempty"`
}

type transferRequest struct {
	To       string `json:"to"`
	Asset    string `json:"asset"`
	Registry string `json:"registry,omitempty"`
}

type burnRequest struct {
	Asset    string `json:"asset"`
	Registry string `json:"registry,omitempty"`
}

type actionView struct {
	TraceId   string    `json:"trace_id"`
	Operation string    `json:"operation"`
	State     string    `json:"state"`
	Result    string    `json:"result,omitempty"`
	Code      string    `json:"code,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type assetView struct {
	Registry string `json:"registry"`
	Id       string `json:"id"`
	Owner    string `json:"owner,omitempty"`
	Info     []byte `json:"info"`
}

type statsView struct {
	Total          string `json:"total"`
	Minted         string `json:"minted"`
	Burned         string `json:"burned"`
	AssetLimit     string `json:"asset_limit"`
	UserAssetLimit uint64 `json:"user_asset_limit"`
}

func viewAction(act *host.Action) *actionView {
	return &actionView{
		TraceId:   act.TraceId,
		Operation: act.Operation,
		State:     act.StateName(),
		Result:    act.Result,
		Code:      act.ErrorCode,
		Error:     act.Error,
		CreatedAt: act.CreatedAt,
	}
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.execute(w, r, &host.Action{
		Operation: host.OperationMint,
		Account:   req.Owner,
		Registry:  req.Registry,
		AssetId:   req.Id,
		Info:      req.Info,
	})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.execute(w, r, &host.Action{
		Operation: host.OperationTransfer,
		Account:   req.To,
		Registry:  req.Registry,
		AssetId:   req.Asset,
	})
}

func (s *Server) handleBurn(w http.ResponseWriter, r *http.Request) {
	var req burnRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.execute(w, r, &host.Action{
		Operation: host.OperationBurn,
		Registry:  req.Registry,
		AssetId:   req.Asset,
	})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	act, err := s.grp.ReadAction(mux.Vars(r)["trace"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, nft.ErrorCodeInternal, err.Error())
		return
	}
	if act == nil {
		writeError(w, http.StatusNotFound, nft.ErrorCodeInvalidRequest, "action not found")
		return
	}
	writeJSON(w, http.StatusOK, viewAction(act))
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	key, err := nft.ParseAssetKey(mux.Vars(r)["asset"], r.URL.Query().Get("registry"))
	if err != nil {
		writeError(w, http.StatusBadRequest, nft.ErrorCodeInvalidRequest, err.Error())
		return
	}
	a, owner, found := s.registry.Lookup(key)
	if !found {
		writeError(w, http.StatusNotFound, nft.ErrorCodeAssetNotFound, nft.ErrAssetNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, viewAsset(a, owner))
}

func (s *Server) handleAccountAssets(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]
	assets := s.registry.AssetsForAccount(account)
	views := make([]*assetView, 0, len(assets))
	for _, a := range assets {
		views = append(views, viewAsset(a, ""))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account": account,
		"total":   len(views),
		"assets":  views,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &statsView{
		Total:          s.registry.Total().String(),
		Minted:         s.registry.Minted().String(),
		Burned:         s.registry.Burned().String(),
		AssetLimit:     s.registry.AssetLimit().String(),
		UserAssetLimit: s.registry.UserAssetLimit(),
	})
}

func viewAsset(a *nft.Asset, owner string) *assetView {
	return &assetView{
		Registry: a.Key.Registry.String(),
		Id:       a.Key.Id.String(),
		Owner:    owner,
		Info:     a.Info,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		writeError(w, http.StatusBadRequest, nft.ErrorCodeInvalidRequest, err.Error())
		return false
	}
	return true
}
