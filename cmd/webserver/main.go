package main

import (
	"bytes"
	"context"
	"embed"
	"encoding/gob"
	"encoding/json"
	"errors"
	"flag"
	"html/template"
	"log"
	"net/http"
	"time"

	"dailyquiz"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionName = "daily-quiz"
	sessionKey  = "quiz"
)

type Server struct {
	service   *dailyquiz.QuizService
	store     sessions.Store
	templates map[string]*template.Template
	now       func() time.Time
}

func init() {
	gob.Register(dailyquiz.Session{})
}

func main() {
	var (
		configDir = flag.String("config", ".", "Directory holding .env and dailyquiz.yaml")
		verbose   = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()

	cfg, err := dailyquiz.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	dailyquiz.SetVerbose(*verbose || cfg.Verbose)
	logger := dailyquiz.Logger()
	defer logger.Sync()

	store, err := dailyquiz.OpenStore(context.Background(), cfg.Store)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close()

	llmLog := dailyquiz.NewLLMLogger(cfg.LLMLog)
	defer llmLog.Close()

	secret := []byte(cfg.Server.SessionSecret)
	if len(secret) == 0 {
		logger.Warn("No session secret configured, sessions will not survive a restart")
		secret = securecookie.GenerateRandomKey(32)
	}

	service := dailyquiz.NewQuizService(store, dailyquiz.NewQuestionMaker(cfg.AI, llmLog))
	server := NewServer(service, newCookieStore(secret, cfg.Server.SecureCookies))

	logger.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := http.ListenAndServe(":"+cfg.Server.Port, server.Routes()); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

// newCookieStore builds the session store. Browsers return secure cookies
// over HTTPS only.
func newCookieStore(secret []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
	return store
}

// NewServer parses the templates and wires the handlers
func NewServer(service *dailyquiz.QuizService, store sessions.Store) *Server {
	funcMap := template.FuncMap{
		"title": dailyquiz.TitleCase,
	}

	templates := make(map[string]*template.Template)
	for _, name := range []string{"question", "results", "error"} {
		templates[name] = template.Must(template.New(name).Funcs(funcMap).ParseFS(templateFS, "templates/base.html", "templates/"+name+".html"))
	}

	return &Server{
		service:   service,
		store:     store,
		templates: templates,
		now:       time.Now,
	}
}

// Routes returns the HTTP handler
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleQuiz)
	r.Post("/answer", s.handleAnswer)
	r.Post("/next", s.handleNext)
	r.Post("/regenerate", s.handleRegenerate)
	r.Get("/api/questions", s.handleAPIQuestions)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// loadQuiz returns today's batch and the caller's session, starting a new
// session if the stored one belongs to another date or was started on a
// batch that has since been regenerated
func (s *Server) loadQuiz(r *http.Request) ([]dailyquiz.Question, *sessions.Session, *dailyquiz.Session, error) {
	date := dailyquiz.Today(s.now())
	batch, err := s.service.GetOrGenerateBatch(r.Context(), date)
	if err != nil {
		return nil, nil, nil, err
	}

	session, _ := s.store.Get(r, sessionName)
	quiz, ok := session.Values[sessionKey].(dailyquiz.Session)
	if !ok || !quiz.Matches(date, batch) {
		quiz = *dailyquiz.StartSession(date, batch)
	}
	return batch, session, &quiz, nil
}

func (s *Server) saveQuiz(w http.ResponseWriter, r *http.Request, session *sessions.Session, quiz *dailyquiz.Session) {
	session.Values[sessionKey] = *quiz
	if err := session.Save(r, w); err != nil {
		dailyquiz.Logger().Error("Session save error", zap.Error(err))
	}
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	batch, session, quiz, err := s.loadQuiz(r)
	if err != nil {
		s.renderError(w, err)
		return
	}
	flashes := session.Flashes()
	s.saveQuiz(w, r, session, quiz)

	if quiz.State == dailyquiz.StateComplete {
		summary := dailyquiz.Summarize(batch, quiz.Answers)
		s.render(w, http.StatusOK, "results", map[string]interface{}{
			"Summary": summary,
			"Flashes": flashes,
		})
		return
	}

	q, err := quiz.Current(batch)
	if err != nil {
		s.renderError(w, err)
		return
	}

	data := map[string]interface{}{
		"Question":  q,
		"Number":    quiz.Index + 1,
		"Total":     quiz.Total,
		"Progress":  int(quiz.Progress() * 100),
		"Submitted": quiz.State == dailyquiz.StateSubmitted,
		"Flashes":   flashes,
	}
	if last, ok := quiz.LastAnswer(); ok && quiz.State == dailyquiz.StateSubmitted {
		data["LastCorrect"] = last.Correct
	}
	s.render(w, http.StatusOK, "question", data)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	batch, session, quiz, err := s.loadQuiz(r)
	if err != nil {
		s.renderError(w, err)
		return
	}

	choice := r.FormValue("choice")
	if choice == "" {
		session.AddFlash("Please select an option before submitting!")
	} else if _, err := s.service.Submit(r.Context(), quiz, batch, choice); err != nil {
		if !errors.Is(err, dailyquiz.ErrInvalidChoice) && !errors.Is(err, dailyquiz.ErrSessionState) {
			s.renderError(w, err)
			return
		}
		session.AddFlash("Please select one of the listed options.")
	}

	s.saveQuiz(w, r, session, quiz)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	_, session, quiz, err := s.loadQuiz(r)
	if err != nil {
		s.renderError(w, err)
		return
	}

	if err := quiz.Next(); err != nil {
		dailyquiz.VerboseLog("Ignoring next: %v", err)
	}
	s.saveQuiz(w, r, session, quiz)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	date := dailyquiz.Today(s.now())
	session, _ := s.store.Get(r, sessionName)

	batch, err := s.service.Regenerate(r.Context(), date)
	if err != nil {
		if !errors.Is(err, dailyquiz.ErrNoQuestions) {
			s.renderError(w, err)
			return
		}
		session.AddFlash("Failed to generate or validate new questions.")
		if err := session.Save(r, w); err != nil {
			dailyquiz.Logger().Error("Session save error", zap.Error(err))
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	session.AddFlash("Questions regenerated and saved!")
	s.saveQuiz(w, r, session, dailyquiz.StartSession(date, batch))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAPIQuestions(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = dailyquiz.Today(s.now())
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	batch, err := s.service.GetOrGenerateBatch(r.Context(), date)
	if err != nil {
		dailyquiz.Logger().Error("Failed to load questions", zap.String("date", date), zap.Error(err))
		http.Error(w, "Failed to load questions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(batch); err != nil {
		dailyquiz.Logger().Error("Failed to encode questions", zap.Error(err))
	}
}

// render executes a template into a buffer, then writes status and body
func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates[name].ExecuteTemplate(&buf, "base.html", data); err != nil {
		dailyquiz.Logger().Error("Template error", zap.String("template", name), zap.Error(err))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		dailyquiz.Logger().Error("Failed to write response", zap.Error(err))
	}
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	message := "Something went wrong. Please try again."
	if errors.Is(err, dailyquiz.ErrNoQuestions) {
		message = "Failed to generate and validate questions. Cannot start quiz."
	}
	dailyquiz.Logger().Error("Request failed", zap.Error(err))
	s.render(w, http.StatusInternalServerError, "error", map[string]interface{}{"Message": message})
}
