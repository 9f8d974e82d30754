package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/fastprodman/wagerpool/internal/services/games"
	"github.com/go-chi/chi/v5"
)

// HandlerProvider wraps a GameService and exposes HTTP handlers.
type HandlerProvider struct {
	svc GameService
}

// NewHandler returns a new Handler provider.
func NewHandler(svc GameService) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{escrow.ErrGameNotActive, http.StatusConflict},
	{escrow.ErrUnauthorized, http.StatusForbidden},
	{escrow.ErrFeeRecipientMismatch, http.StatusForbidden},
	{escrow.ErrAddressOccupied, http.StatusConflict},
	{escrow.ErrInsufficientBalance, http.StatusPaymentRequired},
	{escrow.ErrArithmeticOverflow, http.StatusUnprocessableEntity},
	{escrow.ErrArithmeticUnderflow, http.StatusUnprocessableEntity},
	{escrow.ErrNotAWallet, http.StatusConflict},
	{escrow.ErrNotFound, http.StatusNotFound},
	{escrow.ErrInvalidIdentity, http.StatusBadRequest},
}

// writeServiceError maps domain errors to statuses. Anything unrecognised is
// logged and reported as a 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			writeError(w, es.status, es.err.Error())
			return
		}
	}

	slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// decodeBody reads a JSON body, rejecting unknown fields and trailing data.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body")
		}

		return fmt.Errorf("invalid JSON")
	}

	if dec.More() {
		return fmt.Errorf("unexpected data after JSON body")
	}

	return nil
}

func parseU64(name, raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s required", name)
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an unsigned 64-bit integer", name)
	}

	return v, nil
}

// parseGameIDFromPath reads `{gameId}` from routes like /games/{gameId}/join.
func parseGameIDFromPath(r *http.Request) (uint64, error) {
	return parseU64("gameId", chi.URLParam(r, "gameId"))
}

func parseIdentity(name, raw string) (escrow.Identity, error) {
	id, err := escrow.ParseIdentity(strings.TrimSpace(raw))
	if err != nil {
		return escrow.Identity{}, fmt.Errorf("invalid %s", name)
	}

	return id, nil
}

func signer(w http.ResponseWriter, r *http.Request) (escrow.Identity, bool) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing signature")
	}

	return id, ok
}

// --- Handlers ---

type initializeGameRequest struct {
	GameID       string `json:"gameId"`
	EntryFee     string `json:"entryFee"`
	FeeRecipient string `json:"feeRecipient"`
}

// InitializeGameHandler handles POST /games, signed by the authority.
func (h *HandlerProvider) InitializeGameHandler(w http.ResponseWriter, r *http.Request) {
	authority, ok := signer(w, r)
	if !ok {
		return
	}

	var req initializeGameRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	gameID, err := parseU64("gameId", req.GameID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entryFee, err := parseU64("entryFee", req.EntryFee)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	feeRecipient, err := parseIdentity("feeRecipient", req.FeeRecipient)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := h.svc.InitializeGame(r.Context(), games.InitializeGame{
		GameID:       gameID,
		EntryFee:     entryFee,
		Authority:    authority,
		FeeRecipient: feeRecipient,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newGameView(g))
}

// JoinGameHandler handles POST /games/{gameId}/join, signed by the player.
func (h *HandlerProvider) JoinGameHandler(w http.ResponseWriter, r *http.Request) {
	player, ok := signer(w, r)
	if !ok {
		return
	}

	gameID, err := parseGameIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.JoinGame(r.Context(), gameID, player)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, joinView{
		Participant: newParticipantView(res.Participant),
		Game:        newGameView(res.Game),
	})
}

type endGameRequest struct {
	Winner       string `json:"winner"`
	FeeRecipient string `json:"feeRecipient"`
}

// EndGameHandler handles POST /games/{gameId}/end, signed by the authority.
func (h *HandlerProvider) EndGameHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := signer(w, r)
	if !ok {
		return
	}

	gameID, err := parseGameIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req endGameRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	winner, err := parseIdentity("winner", req.Winner)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	feeRecipient, err := parseIdentity("feeRecipient", req.FeeRecipient)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.EndGame(r.Context(), games.EndGame{
		GameID:       gameID,
		Caller:       caller,
		Winner:       winner,
		FeeRecipient: feeRecipient,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, settlementView{
		Game:        newGameView(res.Game),
		WinnerPrize: newAmount(res.Payout.WinnerPrize),
		Fee:         newAmount(res.Payout.Fee),
	})
}

// GetGameHandler handles GET /games/{gameId}
func (h *HandlerProvider) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseGameIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := h.svc.GetGame(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newGameView(g))
}

// GetParticipantHandler handles GET /games/{gameId}/players/{identity}
func (h *HandlerProvider) GetParticipantHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseGameIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	player, err := parseIdentity("identity", chi.URLParam(r, "identity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.GetParticipant(r.Context(), gameID, player)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newParticipantView(p))
}

// GetAccountHandler handles GET /accounts/{address}
func (h *HandlerProvider) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	addr, err := escrow.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}

	acc, err := h.svc.GetAccount(r.Context(), addr)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountView(acc))
}

type airdropRequest struct {
	Identity string `json:"identity"`
	Lamports string `json:"lamports"`
}

// AirdropHandler handles POST /airdrop (development only).
func (h *HandlerProvider) AirdropHandler(w http.ResponseWriter, r *http.Request) {
	var req airdropRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	to, err := parseIdentity("identity", req.Identity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lamports, err := parseU64("lamports", req.Lamports)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	acc, err := h.svc.Airdrop(r.Context(), to, lamports)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountView(acc))
}
