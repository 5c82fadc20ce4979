package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/yndnr/fitplan-go/internal/core/domain"
)

// fakeAPI is an in-memory fitness plan service.
type fakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]string // username -> password
	tokens   map[string]string // token -> username
	plans    map[string]*domain.Plan
	profiles map[string]*domain.Profile
	seq      int
	calls    map[string]int
	// onRequest, if set, runs before each request is served.
	onRequest func(route string)
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	return startFakeAPI(t, false)
}

// startFakeAPI starts the service, over https when useTLS is set.
func startFakeAPI(t *testing.T, useTLS bool) *fakeAPI {
	t.Helper()
	api := &fakeAPI{
		users:    make(map[string]string),
		tokens:   make(map[string]string),
		plans:    make(map[string]*domain.Plan),
		profiles: make(map[string]*domain.Profile),
		calls:    make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", api.register)
	mux.HandleFunc("POST /auth/token", api.login)
	mux.HandleFunc("GET /auth/me", api.authed(api.me))
	mux.HandleFunc("GET /agent/get-plan", api.authed(api.getPlan))
	mux.HandleFunc("GET /agent/generate-plan", api.authed(api.generatePlan))
	mux.HandleFunc("GET /profile/", api.authed(api.getProfile))
	mux.HandleFunc("POST /profile/", api.authed(api.saveProfile))

	api.Server = httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		api.mu.Lock()
		api.calls[route]++
		hook := api.onRequest
		api.mu.Unlock()
		if hook != nil {
			hook(route)
		}
		mux.ServeHTTP(w, r)
	}))
	if useTLS {
		api.StartTLS()
	} else {
		api.Start()
	}
	t.Cleanup(api.Close)
	return api
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (a *fakeAPI) issue(username string) string {
	a.seq++
	token := fmt.Sprintf("tok-%s-%04d", username, a.seq)
	a.tokens[token] = username
	return token
}

func (a *fakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" || body.Password == "" {
		writeDetail(w, http.StatusBadRequest, "Username and password are required.")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.users[body.Username]; ok {
		writeDetail(w, http.StatusConflict, "Username already taken.")
		return
	}
	a.users[body.Username] = body.Password
	writeJSON(w, http.StatusOK, map[string]string{"access_token": a.issue(body.Username), "token_type": "bearer"})
}

func (a *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "bad form")
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")

	a.mu.Lock()
	defer a.mu.Unlock()
	if pw, ok := a.users[username]; !ok || pw != password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": a.issue(username), "token_type": "bearer"})
}

func (a *fakeAPI) authed(next func(w http.ResponseWriter, r *http.Request, username string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		a.mu.Lock()
		username, ok := a.tokens[token]
		a.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next(w, r, username)
	}
}

func (a *fakeAPI) me(w http.ResponseWriter, _ *http.Request, username string) {
	writeJSON(w, http.StatusOK, map[string]any{"id": 1, "username": username, "created": "2026-01-02T03:04:05"})
}

func (a *fakeAPI) getPlan(w http.ResponseWriter, _ *http.Request, username string) {
	a.mu.Lock()
	plan, ok := a.plans[username]
	a.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "No plan found for user")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (a *fakeAPI) generatePlan(w http.ResponseWriter, _ *http.Request, username string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.profiles[username]; !ok {
		writeDetail(w, http.StatusNotFound, "Profile not found. Please complete your profile first.")
		return
	}
	plan := samplePlan()
	a.plans[username] = plan
	writeJSON(w, http.StatusOK, plan)
}

func (a *fakeAPI) getProfile(w http.ResponseWriter, _ *http.Request, username string) {
	a.mu.Lock()
	profile, ok := a.profiles[username]
	a.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (a *fakeAPI) saveProfile(w http.ResponseWriter, r *http.Request, username string) {
	var p domain.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	p.ID, p.UserID = "p-1", "1"
	a.profiles[username] = &p
	writeJSON(w, http.StatusOK, &p)
}

func (a *fakeAPI) addUser(username, password string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.users[username] = password
}

// revokeAll makes every issued token invalid.
func (a *fakeAPI) revokeAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokens = make(map[string]string)
}

func (a *fakeAPI) setHook(fn func(route string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onRequest = fn
}

func (a *fakeAPI) callCount(route string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[route]
}

func intPtr(v int) *int { return &v }

func samplePlan() *domain.Plan {
	protein := 30.0
	return &domain.Plan{
		HealthMetrics: map[string]any{"bmi": 24.2, "tdee": 2500.0},
		WorkoutPlan: domain.WorkoutPlan{
			Monday: &domain.DayWorkout{
				WorkoutType: "Upper body",
				Exercises: []domain.Exercise{
					{Name: "Push-ups", Sets: 3, Reps: "12", RestSeconds: intPtr(60)},
					{Name: "Rows", Sets: 3, Reps: "10"},
				},
			},
			Wednesday:     &domain.DayWorkout{WorkoutType: "Rest and stretch"},
			WeeklySummary: "Two sessions",
		},
		MealPlan: domain.MealPlan{
			DayMeal: &domain.DayMeals{
				Breakfast: &domain.Meal{Name: "Oatmeal", Calories: intPtr(350), ProteinG: &protein},
				Snacks:    []domain.Meal{{Name: "Apple"}},
			},
			DailyTargets: map[string]any{"calories": 2200.0},
		},
		Tips: []string{"Sleep eight hours", "Drink water"},
	}
}

// testEnv runs the CLI against a fakeAPI with private config and
// credential files.
type testEnv struct {
	t          *testing.T
	api        *fakeAPI
	configPath string
	credPath   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	return &testEnv{
		t:          t,
		api:        newFakeAPI(t),
		configPath: filepath.Join(dir, "cli.yaml"),
		credPath:   filepath.Join(dir, "credentials"),
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes one CLI invocation with stdin as input.
func (e *testEnv) run(stdin string, args ...string) result {
	e.t.Helper()
	app := App()
	var out, errOut bytes.Buffer
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = &errOut

	full := []string{
		AppName,
		"--config", e.configPath,
		"--server", e.api.URL,
		"--credentials-path", e.credPath,
		"--log-level", "error",
	}
	err := app.Run(append(full, args...))
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}
