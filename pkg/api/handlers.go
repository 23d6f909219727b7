package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/surfpatch/pkg/address"
	"github.com/ssargent/surfpatch/pkg/codec"
)

// Server holds the API server state
type Server struct {
	patcher AccountPatcher
	config  ServerConfig
	metrics *Metrics
	logger  *slog.Logger
}

// NewServer creates a new API server
func NewServer(p AccountPatcher, config ServerConfig, metrics *Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		patcher: p,
		config:  config,
		metrics: metrics,
		logger:  logger.With("component", "api"),
	}
}

func (s *Server) record(operation string, err error) {
	if s.metrics != nil {
		s.metrics.RecordAccountOperation(operation, err == nil)
	}
	if err != nil {
		s.logger.Warn("operation failed", "operation", operation, "error", err)
	}
}

// keyParam validates the {key} URL parameter before any store call
func keyParam(w http.ResponseWriter, r *http.Request) (solana.PublicKey, bool) {
	key, err := address.ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		sendOperationError(w, err)
		return solana.PublicKey{}, false
	}
	return key, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		sendError(w, fmt.Sprintf("Invalid JSON in request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.RecordHealthCheck(true)
	}
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleGetAsset godoc
//
//	@Summary		Inspect an asset
//	@Description	Decode the header, plugin registry and plugins of a core asset
//	@Tags			assets
//	@Produce		json
//	@Param			key	path		string	true	"Asset address"
//	@Success		200	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Failure		422	{object}	APIResponse
//	@Failure		502	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/assets/{key} [get]
func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	s.handleGetCore(w, r, codec.KeyAssetV1, "inspect_asset")
}

// handleGetCollection godoc
//
//	@Summary		Inspect a collection
//	@Tags			collections
//	@Produce		json
//	@Param			key	path		string	true	"Collection address"
//	@Success		200	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/collections/{key} [get]
func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	s.handleGetCore(w, r, codec.KeyCollectionV1, "inspect_collection")
}

func (s *Server) handleGetCore(w http.ResponseWriter, r *http.Request, want codec.Key, operation string) {
	key, ok := keyParam(w, r)
	if !ok {
		return
	}
	view, err := s.patcher.InspectCore(r.Context(), key, want)
	s.record(operation, err)
	if err != nil {
		sendOperationError(w, err)
		return
	}
	sendSuccess(w, view)
}

// handleSetAssetOwner godoc
//
//	@Summary		Replace the owner of an asset
//	@Description	Patch the owner field in place. The plugin region is preserved byte for byte.
//	@Tags			assets
//	@Accept			json
//	@Produce		json
//	@Param			key		path		string			true	"Asset address"
//	@Param			request	body		OwnerRequest	true	"New owner"
//	@Success		200		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Failure		422		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/assets/{key}/owner [put]
func (s *Server) handleSetAssetOwner(w http.ResponseWriter, r *http.Request) {
	key, ok := keyParam(w, r)
	if !ok {
		return
	}
	var req OwnerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	owner, err := address.ParseKey(req.Owner)
	if err != nil {
		sendOperationError(w, err)
		return
	}

	res, err := s.patcher.SetAssetOwner(r.Context(), key, owner)
	s.record("set_asset_owner", err)
	if err != nil {
		sendOperationError(w, err)
		return
	}
	sendSuccess(w, res)
}

// handleSetCollectionAuthority godoc
//
//	@Summary		Replace the update authority of a collection
//	@Tags			collections
//	@Accept			json
//	@Produce		json
//	@Param			key		path		string				true	"Collection address"
//	@Param			request	body		AuthorityRequest	true	"New authority"
//	@Success		200		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/collections/{key}/authority [put]
func (s *Server) handleSetCollectionAuthority(w http.ResponseWriter, r *http.Request) {
	key, ok := keyParam(w, r)
	if !ok {
		return
	}
	var req AuthorityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	authority, err := address.ParseKey(req.Authority)
	if err != nil {
		sendOperationError(w, err)
		return
	}

	res, err := s.patcher.SetCollectionAuthority(r.Context(), key, authority)
	s.record("set_collection_authority", err)
	if err != nil {
		sendOperationError(w, err)
		return
	}
	sendSuccess(w, res)
}

// handleGetTokenRecord godoc
//
//	@Summary		Inspect a token record
//	@Tags			tokens
//	@Produce		json
//	@Param			key	path		string	true	"Token record address"
//	@Success		200	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/token-records/{key} [get]
func (s *Server) handleGetTokenRecord(w http.ResponseWriter, r *http.Request) {
	key, ok := keyParam(w, r)
	if !ok {
		return
	}
	tr, err := s.patcher.InspectTokenRecord(r.Context(), key)
	s.record("inspect_token_record", err)
	if err != nil {
		sendOperationError(w, err)
		return
	}
	sendSuccess(w, tr)
}

// handleGetTokenAccount godoc
//
//	@Summary		Inspect a token account
//	@Tags			tokens
//	@Produce		json
//	@Param			key	path		string	true	"Token account address"
//	@Success		200	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/token-accounts/{key} [get]
func (s *Server) handleGetTokenAccount(w http.ResponseWriter, r *http.Request) {
	key, ok := keyParam(w, r)
	if !ok {
		return
	}
	ta, err := s.patcher.InspectTokenAccount(r.Context(), key)
	s.record("inspect_token_account", err)
	if err != nil {
		sendOperationError(w, err)
		return
	}
	sendSuccess(w, ta)
}

// handleListSnapshots godoc
//
//	@Summary		List snapshots
//	@Description	List pre-write snapshots, oldest first, optionally for one address
//	@Tags			snapshots
//	@Produce		json
//	@Param			address	query		string	false	"Only snapshots of this address"
//	@Success		200		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/snapshots [get]
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	var filter *solana.PublicKey
	if raw := strings.TrimSpace(r.URL.Query().Get("address")); raw != "" {
		addr, err := address.ParseKey(raw)
		if err != nil {
			sendOperationError(w, err)
			return
		}
		filter = &addr
	}

	snaps, err := s.patcher.Snapshots(filter)
	s.record("list_snapshots", err)
	if err != nil {
		sendOperationError(w, err)
		return
	}
	sendSuccess(w, map[string]interface{}{
		"snapshots": snaps,
		"count":     len(snaps),
	})
}

// handleRestoreSnapshot godoc
//
//	@Summary		Restore a snapshot
//	@Description	Write a snapshot back to its address. The replaced state is itself snapshotted.
//	@Tags			snapshots
//	@Produce		json
//	@Param			id	path		string	true	"Snapshot id"
//	@Success		200	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/snapshots/{id}/restore [post]
func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, fmt.Sprintf("Invalid snapshot id: %v", err), http.StatusBadRequest)
		return
	}

	res, err := s.patcher.Restore(r.Context(), id)
	s.record("restore_snapshot", err)
	if err != nil {
		sendOperationError(w, err)
		return
	}
	sendSuccess(w, res)
}
