// Package gateway exposes the marketplace's read model over HTTP. It serves
// queries only; transitions enter the engine through the chain runtime, not
// through this API.
package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"
)

// Server wraps the engine's query surface in an HTTP handler.
type Server struct {
	engine *market.Engine
	logger *slog.Logger
}

// NewServer builds the query server. A nil logger falls back to the process
// default.
func NewServer(engine *market.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: engine, logger: logger}
}

// Handler assembles the chi router for the query API, health probe and
// Prometheus scrape endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Get("/market/enabled", s.handleEnabled)
		v1.Get("/market/stats", s.handleMarketStats)
		v1.Get("/market/fiat-volume", s.handleMarketFiatVolume)
		v1.Get("/market/top-collections", s.handleTopCollections)
		v1.Get("/market/rewards", s.handleRewardSystem)

		v1.Route("/collections/{collection}", func(cr chi.Router) {
			cr.Get("/stats", s.handleCollectionStats)
			cr.Get("/fiat-volume", s.handleCollectionFiatVolume)
			cr.Get("/sales", s.handleSalesByCollection)
			cr.Get("/items/{itemID}/sale", s.handleGetSale)
			cr.Get("/items/{itemID}/offers", s.handleOffersByItem)
			cr.Get("/items/{itemID}/history", s.handleTradeHistory)
		})

		v1.Get("/sellers/{address}/sales", s.handleSalesBySeller)
		v1.Get("/denoms/{denom}/sales", s.handleSalesByDenom)
		v1.Get("/offerers/{address}/offers", s.handleOffersByOfferer)
		v1.Get("/profiles/{address}", s.handleGetProfile)
	})

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", slog.String("error", err.Error()))
	}
}

// writeError maps engine error kinds onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: err.Error()}
	var engineErr *market.Error
	if errors.As(err, &engineErr) {
		resp.Kind = engineErr.Kind().String()
		switch engineErr.Kind() {
		case market.KindNotFound:
			status = http.StatusNotFound
		case market.KindValidation:
			status = http.StatusBadRequest
		case market.KindAuthorization:
			status = http.StatusForbidden
		case market.KindDisabled, market.KindPreconditionFailed:
			status = http.StatusServiceUnavailable
		}
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeBadRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Kind: "validation"})
}

func pathAddress(r *http.Request, param string) ([20]byte, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if !common.IsHexAddress(raw) {
		return [20]byte{}, false
	}
	return [20]byte(common.HexToAddress(raw)), true
}

func pagination(r *http.Request) (string, int, error) {
	query := r.URL.Query()
	startAfter := query.Get("after")
	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return "", 0, errors.New("limit must be a non-negative integer")
		}
		limit = parsed
	}
	return startAfter, limit, nil
}

func (s *Server) handleEnabled(w http.ResponseWriter, r *http.Request) {
	enabled, err := s.engine.Enabled()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"enabled": enabled})
}

func (s *Server) handleMarketStats(w http.ResponseWriter, r *http.Request) {
	denom := strings.TrimSpace(r.URL.Query().Get("denom"))
	if denom == "" {
		s.writeBadRequest(w, "denom query parameter is required")
		return
	}
	stats, err := s.engine.MarketStats(denom)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newMarketStatsResponse(stats))
}

func (s *Server) handleMarketFiatVolume(w http.ResponseWriter, r *http.Request) {
	volume, err := s.engine.MarketFiatVolume()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"fiatVolume": bigString(volume)})
}

func (s *Server) handleTopCollections(w http.ResponseWriter, r *http.Request) {
	ranking, err := s.engine.TopCollections()
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := make([]collectionVolumeResponse, 0, len(ranking))
	for _, entry := range ranking {
		resp = append(resp, collectionVolumeResponse{
			Collection: hexAddr(entry.Collection),
			Volume:     bigString(entry.Volume),
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRewardSystem(w http.ResponseWriter, r *http.Request) {
	system, err := s.engine.RewardSystemInfo()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newRewardSystemResponse(system))
}

func (s *Server) handleCollectionStats(w http.ResponseWriter, r *http.Request) {
	collection, ok := pathAddress(r, "collection")
	if !ok {
		s.writeBadRequest(w, "collection must be a hex address")
		return
	}
	denom := strings.TrimSpace(r.URL.Query().Get("denom"))
	if denom == "" {
		s.writeBadRequest(w, "denom query parameter is required")
		return
	}
	stats, err := s.engine.CollectionStats(collection, denom)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newCollectionStatsResponse(stats))
}

func (s *Server) handleCollectionFiatVolume(w http.ResponseWriter, r *http.Request) {
	collection, ok := pathAddress(r, "collection")
	if !ok {
		s.writeBadRequest(w, "collection must be a hex address")
		return
	}
	volume, err := s.engine.FiatVolume(collection)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"fiatVolume": bigString(volume)})
}

func (s *Server) handleSalesByCollection(w http.ResponseWriter, r *http.Request) {
	collection, ok := pathAddress(r, "collection")
	if !ok {
		s.writeBadRequest(w, "collection must be a hex address")
		return
	}
	after, limit, err := pagination(r)
	if err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}
	sales, next, err := s.engine.SalesByCollection(collection, after, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSalePage(sales, next))
}

func (s *Server) handleGetSale(w http.ResponseWriter, r *http.Request) {
	collection, ok := pathAddress(r, "collection")
	if !ok {
		s.writeBadRequest(w, "collection must be a hex address")
		return
	}
	sale, err := s.engine.GetSale(collection, chi.URLParam(r, "itemID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSaleResponse(sale))
}

func (s *Server) handleOffersByItem(w http.ResponseWriter, r *http.Request) {
	collection, ok := pathAddress(r, "collection")
	if !ok {
		s.writeBadRequest(w, "collection must be a hex address")
		return
	}
	after, limit, err := pagination(r)
	if err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}
	offers, next, err := s.engine.OffersByItem(collection, chi.URLParam(r, "itemID"), after, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newOfferPage(offers, next))
}

func (s *Server) handleTradeHistory(w http.ResponseWriter, r *http.Request) {
	collection, ok := pathAddress(r, "collection")
	if !ok {
		s.writeBadRequest(w, "collection must be a hex address")
		return
	}
	after, limit, err := pagination(r)
	if err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}
	trades, next, err := s.engine.TradeHistory(collection, chi.URLParam(r, "itemID"), after, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newTradePage(trades, next))
}

func (s *Server) handleSalesBySeller(w http.ResponseWriter, r *http.Request) {
	seller, ok := pathAddress(r, "address")
	if !ok {
		s.writeBadRequest(w, "address must be a hex address")
		return
	}
	after, limit, err := pagination(r)
	if err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}
	sales, next, err := s.engine.SalesBySeller(seller, after, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSalePage(sales, next))
}

func (s *Server) handleSalesByDenom(w http.ResponseWriter, r *http.Request) {
	denom := strings.TrimSpace(chi.URLParam(r, "denom"))
	if denom == "" {
		s.writeBadRequest(w, "denom is required")
		return
	}
	after, limit, err := pagination(r)
	if err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}
	sales, next, err := s.engine.SalesByDenom(denom, after, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSalePage(sales, next))
}

func (s *Server) handleOffersByOfferer(w http.ResponseWriter, r *http.Request) {
	offerer, ok := pathAddress(r, "address")
	if !ok {
		s.writeBadRequest(w, "address must be a hex address")
		return
	}
	after, limit, err := pagination(r)
	if err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}
	offers, next, err := s.engine.OffersByOfferer(offerer, after, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newOfferPage(offers, next))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	address, ok := pathAddress(r, "address")
	if !ok {
		s.writeBadRequest(w, "address must be a hex address")
		return
	}
	profile, err := s.engine.GetProfile(address)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newProfileResponse(profile))
}
