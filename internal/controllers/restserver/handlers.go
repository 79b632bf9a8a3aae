package restserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clearskies/obsplan/internal/metrics"
	"github.com/clearskies/obsplan/internal/types"
	"github.com/clearskies/obsplan/pkg/catalog"
	"github.com/clearskies/obsplan/pkg/constraints"
	"github.com/clearskies/obsplan/pkg/ephemeris"
	"github.com/clearskies/obsplan/pkg/observability"
	"github.com/clearskies/obsplan/pkg/responseformat"
	"github.com/clearskies/obsplan/pkg/timegrid"
	"github.com/clearskies/obsplan/pkg/transit"
)

// Handlers holds the dependencies shared by the HTTP handlers.
type Handlers struct {
	observers   map[string]*constraints.Observer
	defaultSite string
	resolver    catalog.Resolver
	evaluator   *observability.Evaluator
	ephProvider ephemeris.Provider
	recordChan  chan<- types.EvaluationRecord
	formatter   *responseformat.Formatter
	logger      *zap.SugaredLogger
}

// NewHandlers wires the handler dependencies together.
func NewHandlers(observers map[string]*constraints.Observer, defaultSite string, resolver catalog.Resolver, evaluator *observability.Evaluator, ephProvider ephemeris.Provider, recordChan chan<- types.EvaluationRecord, logger *zap.SugaredLogger) *Handlers {
	return &Handlers{
		observers:   observers,
		defaultSite: defaultSite,
		resolver:    resolver,
		evaluator:   evaluator,
		ephProvider: ephProvider,
		recordChan:  recordChan,
		formatter:   responseformat.NewFormatter(),
		logger:      logger,
	}
}

func (h *Handlers) observerFor(site string) (*constraints.Observer, bool) {
	if site == "" {
		site = h.defaultSite
	}
	obs, ok := h.observers[site]
	return obs, ok
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Observability evaluates a constraint grid for one target over a time window.
func (h *Handlers) Observability(w http.ResponseWriter, req *http.Request) {
	started := time.Now()

	var body ObservabilityRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	obs, ok := h.observerFor(body.Site)
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown site: "+body.Site)
		return
	}

	target, err := h.resolveTarget(req, body.Target)
	if err != nil {
		var notFound *catalog.NameNotFoundError
		if errors.As(err, &notFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
		} else {
			h.writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	if body.StepSeconds <= 0 {
		h.writeError(w, http.StatusBadRequest, "step_seconds must be positive")
		return
	}
	grid, err := timegrid.New(body.Start, body.End, time.Duration(body.StepSeconds)*time.Second)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cs := make([]constraints.Constraint, 0, len(body.Constraints))
	for _, spec := range body.Constraints {
		c, err := spec.Build()
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cs = append(cs, c)
	}
	if len(cs) == 0 {
		h.writeError(w, http.StatusBadRequest, "at least one constraint is required")
		return
	}

	resp := GridResponse{
		RequestID: uuid.NewString(),
		Site:      obs.Name,
		Target:    target.Name,
		Times:     grid.Times(),
	}

	var unknown, satisfied int
	if body.Reduce {
		tg, err := h.evaluator.TargetGrid(req.Context(), cs, obs, []catalog.Target{target}, resp.Times)
		if err != nil {
			h.evaluationFailed(w, started, err)
			return
		}
		resp.TargetNames = tg.TargetNames()
		resp.Rows = toCellDTOs(tg.Rows())
		for _, c := range tg.Rows()[0] {
			if !c.Known {
				unknown++
			} else if c.Score > 0 {
				satisfied++
				resp.Observable = true
			}
		}
	} else {
		cg, err := h.evaluator.Grid(req.Context(), cs, obs, target, resp.Times)
		if err != nil {
			h.evaluationFailed(w, started, err)
			return
		}
		resp.ConstraintNames = cg.ConstraintNames()
		resp.Rows = toCellDTOs(cg.Rows())
		for j := range resp.Times {
			allKnown, allPass := true, true
			for i := range cs {
				cell := cg.Cell(i, j)
				if !cell.Known {
					allKnown = false
				}
				if cell.Score <= 0 {
					allPass = false
				}
			}
			if !allKnown {
				unknown++
			} else if allPass {
				satisfied++
				resp.Observable = true
			}
		}
	}

	metrics.CountSampleFailures(unknown)
	metrics.ObserveEvaluation("grid", "ok", time.Since(started))
	h.archive(types.EvaluationRecord{
		ID:             resp.RequestID,
		Site:           obs.Name,
		Target:         target.Name,
		Kind:           "grid",
		WindowStart:    body.Start,
		WindowEnd:      body.End,
		SampleCount:    grid.Len(),
		SatisfiedCount: satisfied,
		UnknownCount:   unknown,
		Strict:         h.evaluator.Strict,
		EvaluatedAt:    started.UTC(),
	})

	if err := h.formatter.WriteResponse(w, req, resp); err != nil {
		h.logger.Errorf("error writing observability response: %v", err)
	}
}

func (h *Handlers) evaluationFailed(w http.ResponseWriter, started time.Time, err error) {
	metrics.ObserveEvaluation("grid", "error", time.Since(started))
	var aborted *observability.StrictEvaluationAbortedError
	if errors.As(err, &aborted) {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.writeError(w, http.StatusInternalServerError, err.Error())
}

func (h *Handlers) resolveTarget(req *http.Request, spec TargetSpec) (catalog.Target, error) {
	if spec.RADeg != nil && spec.DecDeg != nil {
		name := spec.Name
		if name == "" {
			name = "unnamed"
		}
		return catalog.NewTarget(name, *spec.RADeg, *spec.DecDeg), nil
	}
	if spec.Name == "" {
		return catalog.Target{}, errors.New("target requires a name or explicit coordinates")
	}
	return catalog.ResolveTarget(req.Context(), h.resolver, spec.Name)
}

func (h *Handlers) archive(record types.EvaluationRecord) {
	if h.recordChan == nil {
		return
	}
	select {
	case h.recordChan <- record:
	default:
		h.logger.Warn("evaluation archive channel full, dropping record")
	}
}

// Events predicts mid-event times for a periodic eclipsing system.
// Query parameters: name, epoch (RFC3339), period_hours, duration_hours,
// count, which (next|previous|nearest|secondary).
func (h *Handlers) Events(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	epoch, err := time.Parse(time.RFC3339, q.Get("epoch"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid epoch: "+err.Error())
		return
	}
	periodHours, err := strconv.ParseFloat(q.Get("period_hours"), 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid period_hours")
		return
	}
	var durationHours float64
	if d := q.Get("duration_hours"); d != "" {
		durationHours, err = strconv.ParseFloat(d, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid duration_hours")
			return
		}
	}

	sys, err := transit.NewEclipsingSystem(q.Get("name"), epoch,
		time.Duration(periodHours*float64(time.Hour)),
		time.Duration(durationHours*float64(time.Hour)))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	count := 1
	if c := q.Get("count"); c != "" {
		count, err = strconv.Atoi(c)
		if err != nil || count < 1 || count > 1000 {
			h.writeError(w, http.StatusBadRequest, "count must be between 1 and 1000")
			return
		}
	}

	ref := time.Now().UTC()
	if r := q.Get("ref"); r != "" {
		ref, err = time.Parse(time.RFC3339, r)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid ref: "+err.Error())
			return
		}
	}

	which := q.Get("which")
	var events []time.Time
	switch which {
	case "", "next":
		which = "next"
		events = sys.NextEventTimes(ref, count)
	case "previous":
		events = sys.PreviousEventTimes(ref, count)
	case "nearest":
		events = []time.Time{sys.NearestEventTime(ref)}
	case "secondary":
		events = sys.NextSecondaryEventTimes(ref, count)
	default:
		h.writeError(w, http.StatusBadRequest, "which must be next, previous, nearest, or secondary")
		return
	}

	resp := EventsResponse{
		RequestID: uuid.NewString(),
		System:    sys.Name,
		Which:     which,
		Events:    events,
	}
	if err := h.formatter.WriteResponse(w, req, resp); err != nil {
		h.logger.Errorf("error writing events response: %v", err)
	}
}

// Ephemeris returns a sun/moon snapshot for a site and time.
// Query parameters: site, at (RFC3339, required).
func (h *Handlers) Ephemeris(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	obs, ok := h.observerFor(q.Get("site"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown site: "+q.Get("site"))
		return
	}

	at, err := time.Parse(time.RFC3339, q.Get("at"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid at: "+err.Error())
		return
	}

	sun, err := obs.SunAltAz(req.Context(), at)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	moon, err := obs.MoonAltAz(req.Context(), at)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	illum, err := obs.MoonIllumination(req.Context(), at)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := EphemerisResponse{
		Site:             obs.Name,
		Time:             at,
		SunAltitudeDeg:   sun.AltitudeDeg,
		SunAzimuthDeg:    sun.AzimuthDeg,
		MoonAltitudeDeg:  moon.AltitudeDeg,
		MoonAzimuthDeg:   moon.AzimuthDeg,
		MoonIllumination: illum,
	}
	if err := h.formatter.WriteResponse(w, req, resp); err != nil {
		h.logger.Errorf("error writing ephemeris response: %v", err)
	}
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func toCellDTOs(rows [][]observability.Cell) [][]CellDTO {
	out := make([][]CellDTO, len(rows))
	for i, row := range rows {
		out[i] = make([]CellDTO, len(row))
		for j, c := range row {
			out[i][j] = CellDTO{Score: c.Score, Known: c.Known}
		}
	}
	return out
}
