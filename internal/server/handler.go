package server

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hilotrack/internal/predictor"
	"hilotrack/models"
)

// HistoryReader is the read-only slice of the store the presentation layer
// needs; it never appends or clears.
type HistoryReader interface {
	QueryRecent(ctx context.Context, limit int) ([]models.PredictionRecord, error)
	AllRecords(ctx context.Context) ([]models.PredictionRecord, error)
	AggregateOutcomeCounts(ctx context.Context) (wins, losses int, err error)
	ListArchives(ctx context.Context) ([]models.ArchiveHandle, error)
	ArchiveRows(ctx context.Context, archiveID string) ([]models.PredictionRecord, error)
}

// Handler wires the dashboard and API routes.
type Handler struct {
	logger zerolog.Logger
	source models.EventSource
	engine *predictor.Engine
	store  HistoryReader
}

func NewHandler(source models.EventSource, engine *predictor.Engine, store HistoryReader) *Handler {
	return &Handler{
		logger: log.With().Str("component", "http_handler").Logger(),
		source: source,
		engine: engine,
		store:  store,
	}
}

// RegisterRoutes attaches all routes to the echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Dashboard)
	e.GET("/data", h.Data)
	e.GET("/healthz", h.Health)
	e.GET("/export.csv", h.ExportCSV)

	g := e.Group("/api")
	g.GET("/history", h.History)
	g.GET("/stats", h.Stats)
	g.GET("/archives", h.Archives)
	g.GET("/archives/:id/export.csv", h.ArchiveCSV)
	g.POST("/reset", h.Reset)
}

// dataResponse is the per-poll dashboard payload: the observation result
// plus the raw recent events for the table view.
type dataResponse struct {
	models.ObservationResult
	Last10        []models.ResolvedEvent `json:"last10"`
	StoreDegraded bool                   `json:"store_degraded,omitempty"`
}

// Data triggers one fetch+observe cycle and returns the result. A feed
// failure is not an error here: the engine is handed an empty window and
// answers with its no-data result.
func (h *Handler) Data(c echo.Context) error {
	ctx := c.Request().Context()

	window, err := h.source.Recent(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("feed unavailable, observing empty window")
		window = nil
	}

	res, storeErr := h.engine.Observe(ctx, window)
	if storeErr != nil {
		h.logger.Error().Err(storeErr).Msg("observation stored with degradation")
	}

	last := window
	if len(last) > 10 {
		last = last[:10]
	}

	return c.JSON(http.StatusOK, dataResponse{
		ObservationResult: res,
		Last10:            last,
		StoreDegraded:     storeErr != nil,
	})
}

// History serves the most recent persisted records.
func (h *Handler) History(c echo.Context) error {
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be an integer in [1,1000]"})
		}
		limit = n
	}

	recs, err := h.store.QueryRecent(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("history query failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
	}
	if recs == nil {
		recs = []models.PredictionRecord{}
	}
	return c.JSON(http.StatusOK, recs)
}

// Stats combines the live engine snapshot with the persisted aggregate. The
// two can disagree when appends were dropped; both are reported.
func (h *Handler) Stats(c echo.Context) error {
	snap := h.engine.Snapshot()

	wins, losses, err := h.store.AggregateOutcomeCounts(c.Request().Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("aggregate query failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "stats unavailable"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"live": snap,
		"stored": map[string]int{
			"wins":   wins,
			"losses": losses,
		},
	})
}

// Archives lists all archived epochs.
func (h *Handler) Archives(c echo.Context) error {
	handles, err := h.store.ListArchives(c.Request().Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("archive listing failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "archives unavailable"})
	}
	if handles == nil {
		handles = []models.ArchiveHandle{}
	}
	return c.JSON(http.StatusOK, handles)
}

// Reset archives the current epoch and starts a new one. Exposed for manual
// maintenance; the daily scheduler calls the same engine operation.
func (h *Handler) Reset(c echo.Context) error {
	handle, err := h.engine.Reset(c.Request().Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("manual reset degraded")
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"error":   err.Error(),
			"archive": handle,
		})
	}
	return c.JSON(http.StatusOK, handle)
}

// ExportCSV streams the live history as CSV in insertion order.
func (h *Handler) ExportCSV(c echo.Context) error {
	recs, err := h.store.AllRecords(c.Request().Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("live export failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "export unavailable"})
	}
	return writeRecordsCSV(c, "history.csv", recs)
}

// ArchiveCSV streams one archived epoch as CSV.
func (h *Handler) ArchiveCSV(c echo.Context) error {
	id := c.Param("id")
	recs, err := h.store.ArchiveRows(c.Request().Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("archive_id", id).Msg("archive export failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "export unavailable"})
	}
	if len(recs) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "archive not found or empty"})
	}
	return writeRecordsCSV(c, "archive-"+id+".csv", recs)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// csvHeader fixes the export column order; it matches the persisted layout.
var csvHeader = []string{
	"event_id", "magnitude", "category", "color_tag",
	"prediction_label", "strategy_label", "outcome", "recorded_at",
}

func writeRecordsCSV(c echo.Context, filename string, recs []models.PredictionRecord) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range recs {
		row := []string{
			rec.EventID,
			strconv.Itoa(rec.Magnitude),
			rec.Category.String(),
			rec.ColorTag,
			rec.PredictionLabel,
			rec.StrategyLabel,
			rec.Outcome.String(),
			rec.RecordedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
