package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/bri"
	"github.com/trezcool/ustawi/core/sentiment"
	dummydb "github.com/trezcool/ustawi/storage/database/dummy"
	testutil "github.com/trezcool/ustawi/tests"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

func setup(t *testing.T) (*server, *dummydb.DB) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}

	conf := &core.Config{
		TestMode: true,
		AppName:  "Ustawi",
		BRI: core.BRIConfig{
			SweepWorkers: 2,
			ReadTimeout:  time.Second,
		},
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	bri.InitValidators(validate, translator)

	sentRepo := dummydb.NewSentimentRepository(db)
	agg := bri.NewAggregator(dummydb.NewAcademicsRepository(db), sentRepo, conf.BRI.ReadTimeout)
	briSvc := bri.NewService(
		conf,
		nopLogger{},
		dummydb.NewStudentRepository(db),
		dummydb.NewConfigRepository(db),
		dummydb.NewSnapshotRepository(db),
		agg,
		nil,
	)

	return NewServer(ServerDeps{
		Conf:          conf,
		Logger:        nopLogger{},
		BRISvc:        briSvc,
		SentimentRepo: sentRepo,
		Validate:      validate,
		Translator:    translator,
	}), db
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func Test_home(t *testing.T) {
	srv, _ := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("GET / code = %d, want %d", rec.Code, http.StatusOK)
	}
}

func Test_sentimentApi_score(t *testing.T) {
	srv, db := setup(t)
	std := testutil.CreateStudent(t, dummydb.NewStudentRepository(db), "Imani Peter", "S6 PCB")

	tests := []struct {
		name         string
		body         interface{}
		wantCode     int
		wantScore    float64
		wantLabel    sentiment.Label
		wantRecorded bool
	}{
		{
			name:     "missing text",
			body:     SentimentRequest{},
			wantCode: http.StatusBadRequest,
		},
		{
			name:      "scores without recording",
			body:      SentimentRequest{Text: "this was a great and happy lesson"},
			wantCode:  http.StatusOK,
			wantScore: 0.7,
			wantLabel: sentiment.LabelPositive,
		},
		{
			name:         "records for a student",
			body:         SentimentRequest{StudentID: std.ID, Text: "I am stressed and overwhelmed"},
			wantCode:     http.StatusOK,
			wantScore:    0.1,
			wantLabel:    sentiment.LabelNegative,
			wantRecorded: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/sentiment", marshallObj(t, tt.body))
			srv.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("POST /v1/sentiment code = %d, want %d; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var res SentimentResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if !almostEqual(res.Score, tt.wantScore) {
				t.Errorf("score = %v, want %v", res.Score, tt.wantScore)
			}
			if res.Label != tt.wantLabel {
				t.Errorf("label = %v, want %v", res.Label, tt.wantLabel)
			}
			if res.Recorded != tt.wantRecorded {
				t.Errorf("recorded = %v, want %v", res.Recorded, tt.wantRecorded)
			}
		})
	}

	// the recorded event is queryable for aggregation
	evts, err := dummydb.NewSentimentRepository(db).QueryEventsSince(
		context.Background(), std.ID, time.Now().UTC().AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("QueryEventsSince() failed: %v", err)
	}
	if len(evts) != 1 {
		t.Errorf("got %d recorded events, want 1", len(evts))
	}
}

func Test_briApi_config(t *testing.T) {
	srv, _ := setup(t)

	t.Run("get without active config", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/bri/config")
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET /v1/bri/config code = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("put invalid weights", func(t *testing.T) {
		body := marshallObj(t, bri.NewWeightConfig{
			AttendanceWeight:  0.5,
			MarksWeight:       0.5,
			AssignmentsWeight: 0.5,
			SentimentWeight:   0.5,
			LowRiskThreshold:  0.33,
			HighRiskThreshold: 0.66,
		})
		req, rec := newRequest(http.MethodPut, "/v1/bri/config", body)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("PUT /v1/bri/config code = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("put then get", func(t *testing.T) {
		body := marshallObj(t, bri.NewWeightConfig{
			AttendanceWeight:  0.25,
			MarksWeight:       0.25,
			AssignmentsWeight: 0.20,
			SentimentWeight:   0.30,
			LowRiskThreshold:  0.33,
			HighRiskThreshold: 0.66,
		})
		req, rec := newRequest(http.MethodPut, "/v1/bri/config", body)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("PUT /v1/bri/config code = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		req, rec = newRequest(http.MethodGet, "/v1/bri/config")
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /v1/bri/config code = %d, want %d", rec.Code, http.StatusOK)
		}
		var cfg bri.WeightConfig
		if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
			t.Fatalf("unmarshalling config: %v", err)
		}
		if cfg.SentimentWeight != 0.30 {
			t.Errorf("sentiment_weight = %v, want 0.30", cfg.SentimentWeight)
		}
		if !cfg.IsActive {
			t.Error("config not active")
		}
	})
}

func Test_briApi_recompute(t *testing.T) {
	srv, db := setup(t)
	testutil.DefaultWeightConfig(t, dummydb.NewConfigRepository(db))
	std := testutil.CreateStudent(t, dummydb.NewStudentRepository(db), "Imani Peter", "S6 PCB")

	t.Run("unknown student", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/students/nope/bri/recompute")
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("recompute with no data", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/students/"+std.ID+"/bri/recompute")
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var res bri.Result
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling result: %v", err)
		}
		if res.BRIScore != 0.5 {
			t.Errorf("bri_score = %v, want 0.5", res.BRIScore)
		}
		if res.RiskLevel != bri.RiskAtRisk {
			t.Errorf("risk_level = %v, want %v", res.RiskLevel, bri.RiskAtRisk)
		}
	})

	t.Run("snapshots show up", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/students/"+std.ID+"/bri/snapshots")
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want %d", rec.Code, http.StatusOK)
		}
		var snaps []bri.Snapshot
		if err := json.Unmarshal(rec.Body.Bytes(), &snaps); err != nil {
			t.Fatalf("unmarshalling snapshots: %v", err)
		}
		if len(snaps) != 1 {
			t.Errorf("got %d snapshots, want 1", len(snaps))
		}
	})

	t.Run("snapshots of unknown student", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/students/nope/bri/snapshots")
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("bad snapshot range", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/students/"+std.ID+"/bri/snapshots?from=lol")
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func Test_briApi_listStudents(t *testing.T) {
	srv, db := setup(t)
	testutil.DefaultWeightConfig(t, dummydb.NewConfigRepository(db))
	stdRepo := dummydb.NewStudentRepository(db)
	std := testutil.CreateStudent(t, stdRepo, "Imani Peter", "S6 PCB")
	testutil.CreateStudent(t, stdRepo, "Amani Otieno", "S5 MCB")

	// classify one student
	req, rec := newRequest(http.MethodPost, "/v1/students/"+std.ID+"/bri/recompute")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("recompute code = %d, want %d", rec.Code, http.StatusOK)
	}

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantLen  int
	}{
		{name: "all students", path: "/v1/students", wantCode: http.StatusOK, wantLen: 2},
		{name: "at risk only", path: "/v1/students?risk=At+Risk", wantCode: http.StatusOK, wantLen: 1},
		{name: "high only", path: "/v1/students?risk=High", wantCode: http.StatusOK, wantLen: 0},
		{name: "one class", path: "/v1/students?class=S5+MCB", wantCode: http.StatusOK, wantLen: 1},
		{name: "search by name", path: "/v1/students?search=imani", wantCode: http.StatusOK, wantLen: 1},
		{name: "tier and class combined", path: "/v1/students?risk=At+Risk&class=S5+MCB", wantCode: http.StatusOK, wantLen: 0},
		{name: "unknown tier", path: "/v1/students?risk=Bogus", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			srv.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("GET %s code = %d, want %d; body %s", tt.path, rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var listed []bri.StudentRisk
			if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
				t.Fatalf("unmarshalling students: %v", err)
			}
			if len(listed) != tt.wantLen {
				t.Errorf("got %d students, want %d", len(listed), tt.wantLen)
			}
		})
	}
}
