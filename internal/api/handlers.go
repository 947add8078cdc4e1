package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/susu3304/epicgambler/internal/catalog"
	"github.com/susu3304/epicgambler/internal/ledger"
)

const maxBodyBytes = 64 << 10

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("✅ EpicGambler Bot is running!"))
}

const healthTimeout = 2 * time.Second

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if a.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := a.store.Ping(ctx); err != nil {
			log.WithError(err).Warn("api: store ping failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handlePublicShop(w http.ResponseWriter, r *http.Request) {
	items, err := a.catalog.ListItems(r.Context())
	if err != nil {
		a.storeError(w, err)
		return
	}
	if items == nil {
		items = []catalog.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

type addItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Payload     string `json:"payload"`
}

func (a *API) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := a.catalog.AddItem(r.Context(), catalog.NewItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Payload:     req.Payload,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidItem) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.storeError(w, err)
		return
	}

	if claims, ok := claimsFrom(r.Context()); ok {
		log.WithFields(log.Fields{
			"operator": claims.UserID,
			"item_id":  item.ID,
		}).Info("api: catalog item added")
	}
	writeJSON(w, http.StatusCreated, item)
}

func (a *API) handleAccount(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if _, err := strconv.ParseUint(userID, 10, 64); err != nil {
		writeError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	balance, err := a.ledger.GetBalance(r.Context(), userID)
	if err != nil {
		a.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"balance": balance,
	})
}

func (a *API) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ledger.ErrStoreUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	log.WithError(err).Error("api: store error")
	writeError(w, http.StatusInternalServerError, "internal error")
}
