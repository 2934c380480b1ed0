package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	app "github.com/innovatorsofhonour/innovators/internal/app"
	"github.com/innovatorsofhonour/innovators/internal/app/metrics"
	"github.com/innovatorsofhonour/innovators/internal/app/services/jobs"
	"github.com/innovatorsofhonour/innovators/internal/app/services/pitches"
	"github.com/innovatorsofhonour/innovators/internal/app/services/search"
	"github.com/innovatorsofhonour/innovators/internal/app/services/solutions"
	"github.com/innovatorsofhonour/innovators/internal/app/storage"
	apperrors "github.com/innovatorsofhonour/innovators/internal/errors"
	"github.com/innovatorsofhonour/innovators/internal/middleware"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

const defaultMaxBodyBytes = 16 << 20

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app          *app.Application
	log          *logger.Logger
	pages        *pageSet
	maxBodyBytes int64
}

// NewHandler returns a router exposing the HTML pages and the JSON API.
func NewHandler(application *app.Application, log *logger.Logger, opts ...Option) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	o := options{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&o)
	}

	h := &handler{
		app:          application,
		log:          log,
		pages:        mustLoadPages(),
		maxBodyBytes: o.maxBodyBytes,
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.methodNotAllowed)
	r.Use(metrics.RouteLabel)

	r.HandleFunc("/", h.homePage).Methods(http.MethodGet)
	r.HandleFunc("/programs", h.programsPage).Methods(http.MethodGet)
	r.HandleFunc("/solutions", h.solutionsPage).Methods(http.MethodGet)
	r.HandleFunc("/hiring", h.hiringPage).Methods(http.MethodGet)
	r.HandleFunc("/learn", h.learnPage).Methods(http.MethodGet)
	r.HandleFunc("/community", h.communityPage).Methods(http.MethodGet)
	r.HandleFunc("/investors", h.investorsPage).Methods(http.MethodGet)
	r.HandleFunc("/pitch-application", h.staticPage("pitch_application")).Methods(http.MethodGet)
	r.HandleFunc("/mint-nft", h.mintPage).Methods(http.MethodGet)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.health).Methods(http.MethodGet)
	api.HandleFunc("/solutions", h.listSolutions).Methods(http.MethodGet)
	api.HandleFunc("/solutions", h.createSolution).Methods(http.MethodPost)
	api.HandleFunc("/jobs", h.listJobs).Methods(http.MethodGet)
	api.HandleFunc("/jobs", h.createJob).Methods(http.MethodPost)
	api.HandleFunc("/courses", h.listCourses).Methods(http.MethodGet)
	api.HandleFunc("/events", h.listEvents).Methods(http.MethodGet)
	api.HandleFunc("/pitch-application", h.submitPitch).Methods(http.MethodPost)
	api.HandleFunc("/register-event", h.registerEvent).Methods(http.MethodPost)
	api.HandleFunc("/stats", h.stats).Methods(http.MethodGet)
	api.HandleFunc("/search", h.search).Methods(http.MethodGet)
	api.HandleFunc("/solution/{id:[0-9]+}/view", h.viewSolution).Methods(http.MethodPost)
	api.HandleFunc("/solution/{id:[0-9]+}/purchase", h.purchaseSolution).Methods(http.MethodPost)

	var out http.Handler = r
	if o.audit != nil {
		out = wrapWithAudit(out, o.audit, log)
	}
	if o.limiter != nil {
		out = middleware.NewRateLimiter(o.limiter, o.rateLimit, log).Exempt(isCounterRequest).Handler(out)
	}
	out = middleware.NewIdentityMiddleware(o.sessionSecret, application.Users, log).Handler(out)
	out = middleware.NewCORSMiddleware(o.corsOrigins).Handler(out)
	out = middleware.MetricsMiddleware()(out)
	out = middleware.RecoveryMiddleware(log)(out)
	out = middleware.LoggingMiddleware(log)(out)
	return out
}

// JSON API -------------------------------------------------------------------

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Ping(r.Context()); err != nil {
		h.log.WithError(err).Warn("health check: store unreachable")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}

func (h *handler) listSolutions(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Solutions.List(r.Context(), solutionFilter(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]solutionView, len(list))
	for i, s := range list {
		out[i] = newSolutionView(s)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) createSolution(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title         string           `json:"title"`
		Description   string           `json:"description"`
		Category      string           `json:"category"`
		Stage         string           `json:"stage"`
		FundingStatus string           `json:"funding_status"`
		PriceETH      *decimal.Decimal `json:"price_eth"`
	}
	if err := h.decodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}

	sol, err := h.app.Solutions.Create(r.Context(), solutions.CreateInput{
		Title:         payload.Title,
		Description:   payload.Description,
		Category:      payload.Category,
		Stage:         payload.Stage,
		FundingStatus: payload.FundingStatus,
		PriceETH:      payload.PriceETH,
	}, middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": sol.ID})
}

func (h *handler) listJobs(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Jobs.List(r.Context(), jobFilter(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]jobView, len(list))
	for i, j := range list {
		out[i] = newJobView(j)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) createJob(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title        string `json:"title"`
		Company      string `json:"company"`
		Location     string `json:"location"`
		JobType      string `json:"job_type"`
		Description  string `json:"description"`
		SalaryRange  string `json:"salary_range"`
		Requirements string `json:"requirements"`
		Benefits     string `json:"benefits"`
		Remote       flag   `json:"remote"`
	}
	if err := h.decodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}

	j, err := h.app.Jobs.Create(r.Context(), jobs.CreateInput{
		Title:        payload.Title,
		Company:      payload.Company,
		Location:     payload.Location,
		JobType:      payload.JobType,
		Description:  payload.Description,
		SalaryRange:  payload.SalaryRange,
		Requirements: payload.Requirements,
		Benefits:     payload.Benefits,
		Remote:       bool(payload.Remote),
	}, middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": j.ID})
}

func (h *handler) listCourses(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Courses.List(r.Context(), storage.CourseFilter{Category: r.URL.Query().Get("category")})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]courseView, len(list))
	for i, c := range list {
		out[i] = newCourseView(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) listEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Events.Upcoming(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]eventView, len(list))
	for i, e := range list {
		out[i] = newEventView(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) submitPitch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CompanyName   string `json:"company_name"`
		FounderName   string `json:"founder_name"`
		Email         string `json:"email"`
		Phone         string `json:"phone"`
		CompanyStage  string `json:"company_stage"`
		Industry      string `json:"industry"`
		FundingAmount string `json:"funding_amount"`
	}

	if isJSON(r) {
		if err := h.decodeJSON(w, r, &payload); err != nil {
			h.writeError(w, r, err)
			return
		}
	} else {
		if err := h.parseForm(w, r); err != nil {
			h.writeError(w, r, err)
			return
		}
		payload.CompanyName = r.FormValue("company_name")
		payload.FounderName = r.FormValue("founder_name")
		payload.Email = r.FormValue("email")
		payload.Phone = r.FormValue("phone")
		payload.CompanyStage = r.FormValue("company_stage")
		payload.Industry = r.FormValue("industry")
		payload.FundingAmount = r.FormValue("funding_amount")
	}

	if _, err := h.app.Pitches.Submit(r.Context(), pitches.SubmitInput{
		CompanyName:   payload.CompanyName,
		FounderName:   payload.FounderName,
		Email:         payload.Email,
		Phone:         payload.Phone,
		CompanyStage:  payload.CompanyStage,
		Industry:      payload.Industry,
		FundingAmount: payload.FundingAmount,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Application submitted successfully!"})
}

func (h *handler) registerEvent(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		EventID json.Number `json:"event_id"`
		Type    string      `json:"type"`
	}
	if err := h.decodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}

	var eventID int64
	if payload.EventID != "" {
		id, err := payload.EventID.Int64()
		if err != nil {
			h.writeError(w, r, apperrors.Validation("event_id must be an integer"))
			return
		}
		eventID = id
	}

	if _, err := h.app.Events.Register(r.Context(), eventID, payload.Type, middleware.GetUserID(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Registration successful!"})
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.app.Search.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsView{
		Members:   s.Members,
		Solutions: s.Solutions,
		Jobs:      s.Jobs,
		Courses:   s.Courses,
		Events:    s.Events,
	})
}

func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	res, err := h.app.Search.Search(r.Context(), query.Get("q"), search.Scope(query.Get("category")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make(map[string]any)
	if res.Solutions != nil {
		views := make([]searchSolutionView, len(res.Solutions))
		for i, s := range res.Solutions {
			views[i] = searchSolutionView{ID: s.ID, Title: s.Title, Description: s.Description, Category: s.Category}
		}
		out["solutions"] = views
	}
	if res.Jobs != nil {
		views := make([]searchJobView, len(res.Jobs))
		for i, j := range res.Jobs {
			views[i] = searchJobView{ID: j.ID, Title: j.Title, Company: j.Company, Location: j.Location}
		}
		out["jobs"] = views
	}
	if res.Courses != nil {
		views := make([]searchCourseView, len(res.Courses))
		for i, c := range res.Courses {
			views[i] = searchCourseView{ID: c.ID, Title: c.Title, Instructor: c.Instructor, Category: c.Category}
		}
		out["courses"] = views
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) viewSolution(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	views, err := h.app.Solutions.RecordView(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "views": views})
}

func (h *handler) purchaseSolution(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.app.Solutions.RecordPurchase(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Purchase successful!"})
}

func (h *handler) notFound(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		h.writeError(w, r, &apperrors.ServiceError{Code: apperrors.CodeNotFound, Message: "not found", HTTPStatus: http.StatusNotFound})
		return
	}
	h.renderStatus(w, r, http.StatusNotFound)
}

func (h *handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		h.writeError(w, r, &apperrors.ServiceError{Code: apperrors.CodeValidation, Message: "method not allowed", HTTPStatus: http.StatusMethodNotAllowed})
		return
	}
	h.renderStatus(w, r, http.StatusMethodNotAllowed)
}

// request helpers -------------------------------------------------------------

func solutionFilter(r *http.Request) storage.SolutionFilter {
	q := r.URL.Query()
	return storage.SolutionFilter{
		Category:      q.Get("category"),
		Stage:         q.Get("stage"),
		FundingStatus: q.Get("funding"),
	}
}

func jobFilter(r *http.Request) storage.JobFilter {
	q := r.URL.Query()
	return storage.JobFilter{
		JobType:    q.Get("type"),
		Location:   q.Get("location"),
		RemoteOnly: jobs.Truthy(q.Get("remote")),
	}
}

// flag decodes a JSON boolean, number or string; strings and numbers follow
// jobs.Truthy.
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flag(b)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flag(jobs.Truthy(n.String()))
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.New("must be a boolean, number or string")
	}
	*f = flag(jobs.Truthy(raw))
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid id %q", raw)
	}
	return id, nil
}

var counterPath = regexp.MustCompile(`^/api/solution/[0-9]+/(view|purchase)$`)

// isCounterRequest matches the solution view and purchase counters.
func isCounterRequest(r *http.Request) bool {
	return counterPath.MatchString(r.URL.Path)
}

func isAPI(r *http.Request) bool {
	return r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")
}

func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == "application/json"
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	defer body.Close()
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return &apperrors.ServiceError{Code: apperrors.CodeValidation, Message: "request body too large", HTTPStatus: http.StatusRequestEntityTooLarge, Err: err}
		case errors.Is(err, io.EOF):
			return apperrors.Validation("request body is required")
		default:
			return apperrors.Validation("invalid JSON body: %v", err)
		}
	}
	return nil
}

func (h *handler) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(h.maxBodyBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return apperrors.Validation("invalid form body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).
			WithField("trace_id", middleware.GetTraceID(r.Context())).
			WithField("path", r.URL.Path).
			Error("request failed")
	}
	writeJSON(w, status, map[string]any{"success": false, "error": apperrors.PublicMessage(err)})
}
