package httpapi

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-extras/go-kit/must"
	"github.com/shopspring/decimal"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/event"
	"github.com/innovatorsofhonour/innovators/internal/app/services/jobs"
	"github.com/innovatorsofhonour/innovators/internal/app/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"index", "programs", "solutions", "hiring", "learn",
	"community", "investors", "pitch_application", "mint_nft", "status",
}

var pageTitles = map[string]string{
	"index":             "Innovators of Honour",
	"programs":          "Programs",
	"solutions":         "Solutions Marketplace",
	"hiring":            "Hiring Board",
	"learn":             "Learn",
	"community":         "Community",
	"investors":         "Investors",
	"pitch_application": "Apply to Pitch",
	"mint_nft":          "Mint a Solution NFT",
	"status":            "Something went wrong",
}

type pageSet struct {
	pages map[string]*template.Template
}

type pageData struct {
	Title  string
	Active string
	Data   any
}

var templateFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"eth":   func(d decimal.Decimal) string { return d.String() },
	"date":  func(t time.Time) string { return t.Format("Mon, 02 Jan 2006 15:04") },
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"seatsLeft": func(e event.Event) int64 {
		if e.Registered >= e.Capacity {
			return 0
		}
		return e.Capacity - e.Registered
	},
	"selected": func(current, option string) bool { return current == option },
}

func mustLoadPages() *pageSet {
	set := &pageSet{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		set.pages[name] = must.Must(template.New(name).Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return set
}

func (h *handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	tmpl, ok := h.pages.pages[name]
	if !ok {
		h.log.WithField("page", name).Error("unknown page template")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", pageData{Title: pageTitles[name], Active: name, Data: data}); err != nil {
		h.log.WithError(err).WithField("page", name).Error("render page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *handler) renderFailure(w http.ResponseWriter, r *http.Request, err error) {
	h.log.WithError(err).WithField("path", r.URL.Path).Error("load page data")
	h.renderStatus(w, r, http.StatusInternalServerError)
}

func (h *handler) renderStatus(w http.ResponseWriter, r *http.Request, status int) {
	h.render(w, r, status, "status", map[string]any{
		"Code":    status,
		"Message": http.StatusText(status),
	})
}

func (h *handler) staticPage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, http.StatusOK, name, nil)
	}
}

func (h *handler) mintPage(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Solutions.List(r.Context(), storage.SolutionFilter{})
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "mint_nft", list)
}

func (h *handler) homePage(w http.ResponseWriter, r *http.Request) {
	stats, err := h.app.Search.Stats(r.Context())
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "index", stats)
}

func (h *handler) programsPage(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Events.Programs(r.Context())
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "programs", list)
}

func (h *handler) solutionsPage(w http.ResponseWriter, r *http.Request) {
	filter := solutionFilter(r)
	list, err := h.app.Solutions.List(r.Context(), filter)
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "solutions", map[string]any{
		"Solutions": list,
		"Category":  orAll(filter.Category),
		"Stage":     orAll(filter.Stage),
		"Funding":   orAll(filter.FundingStatus),
	})
}

func (h *handler) hiringPage(w http.ResponseWriter, r *http.Request) {
	filter := jobFilter(r)
	list, err := h.app.Jobs.List(r.Context(), filter)
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "hiring", map[string]any{
		"Jobs":     list,
		"Type":     orAll(filter.JobType),
		"Location": filter.Location,
		"Remote":   jobs.Truthy(r.URL.Query().Get("remote")),
	})
}

func (h *handler) learnPage(w http.ResponseWriter, r *http.Request) {
	filter := storage.CourseFilter{Category: r.URL.Query().Get("category")}
	list, err := h.app.Courses.List(r.Context(), filter)
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "learn", map[string]any{
		"Courses":  list,
		"Category": orAll(filter.Category),
	})
}

func (h *handler) communityPage(w http.ResponseWriter, r *http.Request) {
	next, ok, err := h.app.Events.NextFellowship(r.Context())
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}
	var data *event.Event
	if ok {
		data = &next
	}
	h.render(w, r, http.StatusOK, "community", data)
}

func (h *handler) investorsPage(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Events.PitchEvents(r.Context())
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "investors", list)
}

func orAll(v string) string {
	if storage.MatchAll(v) {
		return "all"
	}
	return strings.TrimSpace(v)
}
