package client_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/okian/nodo/internal/adapters/http/client"
	"github.com/okian/nodo/internal/domain/model"
	"github.com/okian/nodo/internal/session"
	. "github.com/smartystreets/goconvey/convey"
)

// captured is one request seen by the fake server.
type captured struct {
	Method      string
	URI         string
	Auth        string
	HasAuth     bool
	ContentType string
	RequestID   string
	Body        string
}

// fakeServer replies with a canned response and records every request.
type fakeServer struct {
	mu          sync.Mutex
	requests    []captured
	status      int
	contentType string
	body        string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	_, hasAuth := r.Header["Authorization"]
	f.mu.Lock()
	f.requests = append(f.requests, captured{
		Method:      r.Method,
		URI:         r.URL.RequestURI(),
		Auth:        r.Header.Get("Authorization"),
		HasAuth:     hasAuth,
		ContentType: r.Header.Get("Content-Type"),
		RequestID:   r.Header.Get("X-Request-ID"),
		Body:        string(b),
	})
	status, ct, body := f.status, f.contentType, f.body
	f.mu.Unlock()

	if ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (f *fakeServer) last() captured {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeServer) reply(status int, ct, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.contentType, f.body = status, ct, body
}

func newTestClient(f *fakeServer) (*client.Client, *session.Session, func()) {
	srv := httptest.NewServer(f)
	sess := session.New(session.NewMemoryStore())
	return client.New(srv.URL+"/", sess), sess, srv.Close
}

func TestBearerHeader(t *testing.T) {
	Convey("Given a client over a fake server", t, func() {
		ctx := context.Background()
		f := &fakeServer{contentType: "application/json", body: `{"id":"u1","name":"A","role":"developer"}`}
		c, sess, closeFn := newTestClient(f)
		defer closeFn()

		Convey("When no token is stored", func() {
			_, err := c.Me(ctx)

			Convey("Then no Authorization header is sent at all", func() {
				So(err, ShouldBeNil)
				So(f.last().HasAuth, ShouldBeFalse)
			})
		})

		Convey("When a blank token is stored", func() {
			store := session.NewMemoryStore()
			So(store.Set(ctx, session.TokenKey, ""), ShouldBeNil)
			blank := client.New(c.BaseURL(), session.New(store))

			_, err := blank.Me(ctx)

			Convey("Then the header is still omitted", func() {
				So(err, ShouldBeNil)
				So(f.last().HasAuth, ShouldBeFalse)
			})
		})

		Convey("When a token is stored", func() {
			So(sess.SetToken(ctx, "tok-123"), ShouldBeNil)
			_, err := c.Me(ctx)

			Convey("Then the bearer header carries it", func() {
				So(err, ShouldBeNil)
				So(f.last().Auth, ShouldEqual, "Bearer tok-123")
			})

			Convey("And clearing it stops the header on the next call", func() {
				So(sess.Clear(ctx), ShouldBeNil)
				_, err := c.Me(ctx)
				So(err, ShouldBeNil)
				So(f.last().HasAuth, ShouldBeFalse)
			})
		})

		Convey("When the client has no session", func() {
			anon := client.New(c.BaseURL(), nil)
			_, err := anon.Me(ctx)
			So(err, ShouldBeNil)
			So(f.last().HasAuth, ShouldBeFalse)
		})

		Convey("Then every call carries a request id and JSON content type", func() {
			_, err := c.Me(ctx)
			So(err, ShouldBeNil)
			So(f.last().RequestID, ShouldNotBeEmpty)
			So(f.last().ContentType, ShouldEqual, "application/json")
		})
	})
}

func TestErrorNormalization(t *testing.T) {
	Convey("Given a server that fails", t, func() {
		ctx := context.Background()
		f := &fakeServer{}
		c, _, closeFn := newTestClient(f)
		defer closeFn()

		Convey("When it sends an error body", func() {
			f.reply(http.StatusBadRequest, "application/json", `{"detail":"Email already registered"}`)
			_, err := c.Register(ctx, model.Registration{Email: "a@x.com"})

			Convey("Then the error carries the raw body", func() {
				var re *client.RequestError
				So(errors.As(err, &re), ShouldBeTrue)
				So(re.Status, ShouldEqual, http.StatusBadRequest)
				So(err.Error(), ShouldEqual, `{"detail":"Email already registered"}`)
			})
		})

		Convey("When the error body is empty", func() {
			f.reply(http.StatusInternalServerError, "", "")
			_, err := c.ContractorDashboard(ctx)

			Convey("Then the message falls back to the status code", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldEqual, "Request failed: 500")
			})
		})

		Convey("When the server answers 401", func() {
			f.reply(http.StatusUnauthorized, "text/plain", "Not authenticated")
			_, err := c.Me(ctx)

			So(client.IsUnauthorized(err), ShouldBeTrue)
			So(client.IsUnauthorized(errors.New("other")), ShouldBeFalse)
		})

		Convey("When the server cannot be reached", func() {
			dead := client.New("http://127.0.0.1:1", nil)
			_, err := dead.Me(ctx)

			Convey("Then it is still a RequestError", func() {
				var re *client.RequestError
				So(errors.As(err, &re), ShouldBeTrue)
				So(re.Status, ShouldEqual, 0)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := c.Me(cctx)

			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestResponseBodies(t *testing.T) {
	Convey("Given successful responses", t, func() {
		ctx := context.Background()
		f := &fakeServer{}
		c, _, closeFn := newTestClient(f)
		defer closeFn()

		Convey("When the response declares JSON", func() {
			f.reply(http.StatusOK, "application/json; charset=utf-8", `{"verified":true}`)
			resp, err := c.Verify(ctx, model.Verification{Email: "a@x.com", Code: "123456"})

			Convey("Then it can be decoded", func() {
				So(err, ShouldBeNil)
				So(resp.IsJSON(), ShouldBeTrue)
				var out map[string]bool
				So(resp.Decode(&out), ShouldBeNil)
				So(out["verified"], ShouldBeTrue)
				So(f.last().Body, ShouldEqual, `{"email":"a@x.com","code":"123456"}`)
			})
		})

		Convey("When the response is plain text", func() {
			f.reply(http.StatusOK, "text/plain", "ok")
			resp, err := c.UpdateProposalStatus(ctx, "p1", model.StatusViewed)

			Convey("Then the raw text is returned", func() {
				So(err, ShouldBeNil)
				So(resp.IsJSON(), ShouldBeFalse)
				So(resp.Text(), ShouldEqual, "ok")
				var out map[string]any
				So(resp.Decode(&out), ShouldBeNil)
				So(out, ShouldBeNil)
			})
		})

		Convey("When the identity endpoint answers null", func() {
			f.reply(http.StatusOK, "application/json", `null`)
			u, err := c.Me(ctx)

			Convey("Then there is no user and no error", func() {
				So(err, ShouldBeNil)
				So(u, ShouldBeNil)
			})
		})

		Convey("When the identity endpoint answers an empty object", func() {
			f.reply(http.StatusOK, "application/json", `{}`)
			u, err := c.Me(ctx)
			So(err, ShouldBeNil)
			So(u, ShouldBeNil)
		})

		Convey("When a dashboard carries zone-less timestamps", func() {
			f.reply(http.StatusOK, "application/json",
				`{"opportunities":[{"id":"o1","title":"Roof","category":"Carpentry","created_at":"2024-05-01T10:00:00.123456","deadline":"soon"}],"my_proposals":[]}`)
			dash, err := c.ContractorDashboard(ctx)

			Convey("Then the bundle still decodes", func() {
				So(err, ShouldBeNil)
				So(dash.Opportunities, ShouldHaveLength, 1)
				op := dash.Opportunities[0]
				So(op.CreatedAt.Valid(), ShouldBeTrue)
				So(op.CreatedAt.UTC().Format("2006-01-02 15:04"), ShouldEqual, "2024-05-01 10:00")
				So(op.Deadline.Valid(), ShouldBeFalse)
				So(op.Deadline.Raw, ShouldEqual, "soon")
			})
		})

		Convey("When a JSON response is malformed", func() {
			f.reply(http.StatusOK, "application/json", `{"token":`)
			_, err := c.Login(ctx, model.Credentials{Email: "a@x.com", Password: "p"})

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "invalid JSON response")
		})
	})
}

func TestEndpoints(t *testing.T) {
	Convey("Given a client recording every call", t, func() {
		ctx := context.Background()
		f := &fakeServer{contentType: "application/json", body: `{}`}
		c, _, closeFn := newTestClient(f)
		defer closeFn()

		check := func(method, uri string) {
			So(f.last().Method, ShouldEqual, method)
			So(f.last().URI, ShouldEqual, uri)
		}

		Convey("Then each operation hits its endpoint", func() {
			_, _ = c.Register(ctx, model.Registration{})
			check(http.MethodPost, "/auth/register")
			_, _ = c.Verify(ctx, model.Verification{})
			check(http.MethodPost, "/auth/verify")
			_, _ = c.Login(ctx, model.Credentials{})
			check(http.MethodPost, "/auth/login")
			_, _ = c.Me(ctx)
			check(http.MethodGet, "/auth/me")
			_, _ = c.GetProfile(ctx)
			check(http.MethodGet, "/profile")
			_, _ = c.UpdateProfile(ctx, model.Profile{"company": "Acme"})
			check(http.MethodPut, "/profile")
			_, _ = c.CreateOpportunity(ctx, model.NewOpportunity{})
			check(http.MethodPost, "/opportunities")
			_, _ = c.GetOpportunity(ctx, "o 1")
			check(http.MethodGet, "/opportunities/o%201")
			_, _ = c.SubmitProposal(ctx, "o1", model.NewProposal{Message: "m"})
			check(http.MethodPost, "/opportunities/o1/proposals")
			So(f.last().Body, ShouldEqual, `{"message":"m","attachments":[]}`)
			_, _ = c.UpdateProposalStatus(ctx, "p1", model.StatusSelected)
			check(http.MethodPatch, "/proposals/p1/status")
			So(f.last().Body, ShouldEqual, `{"status":"selected"}`)
			_, _ = c.DeveloperDashboard(ctx)
			check(http.MethodGet, "/dashboard/developer")
			_, _ = c.ContractorDashboard(ctx)
			check(http.MethodGet, "/dashboard/contractor")

			f.reply(http.StatusOK, "application/json", `[]`)
			_, _ = c.MyProposals(ctx)
			check(http.MethodGet, "/proposals/mine")
			_, _ = c.ReceivedProposals(ctx)
			check(http.MethodGet, "/proposals/for-me")
		})

		Convey("When listing opportunities with filters", func() {
			f.reply(http.StatusOK, "application/json", `[]`)

			_, err := c.ListOpportunities(ctx, model.OpportunityFilter{Category: model.CategoryElectrical, Location: ""})
			So(err, ShouldBeNil)
			check(http.MethodGet, "/opportunities?category=Electrical")

			_, err = c.ListOpportunities(ctx, model.OpportunityFilter{})
			So(err, ShouldBeNil)
			check(http.MethodGet, "/opportunities")

			_, err = c.ListOpportunities(ctx, model.OpportunityFilter{Category: model.CategoryCivilWork, Location: "Austin"})
			So(err, ShouldBeNil)
			check(http.MethodGet, "/opportunities?category=Civil+Work&location=Austin")

			_, err = c.ListOpportunities(ctx, model.OpportunityFilter{Location: "Lyon"})
			So(err, ShouldBeNil)
			check(http.MethodGet, "/opportunities?location=Lyon")
		})
	})
}

func TestUpload(t *testing.T) {
	Convey("Given an upload endpoint", t, func() {
		ctx := context.Background()
		var (
			gotType     string
			gotFile     string
			gotFilename string
		)
		status := http.StatusOK
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotType = r.Header.Get("Content-Type")
			if file, hdr, err := r.FormFile("file"); err == nil {
				b, _ := io.ReadAll(file)
				gotFile, gotFilename = string(b), hdr.Filename
			}
			if status != http.StatusOK {
				http.Error(w, "disk full on node 7", status)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"url":"/files/plan.pdf","filename":"plan.pdf"}`)
		}))
		defer srv.Close()

		sess := session.New(session.NewMemoryStore())
		So(sess.SetToken(ctx, "tok"), ShouldBeNil)
		c := client.New(srv.URL, sess)

		Convey("When the upload succeeds", func() {
			res, err := c.Upload(ctx, "plan.pdf", strings.NewReader("%PDF-1.7"))

			Convey("Then a multipart form is sent without the JSON content type", func() {
				So(err, ShouldBeNil)
				So(res.URL, ShouldEqual, "/files/plan.pdf")
				So(gotType, ShouldStartWith, "multipart/form-data")
				So(gotFile, ShouldEqual, "%PDF-1.7")
				So(gotFilename, ShouldEqual, "plan.pdf")
			})
		})

		Convey("When the server rejects the upload", func() {
			status = http.StatusInsufficientStorage
			_, err := c.Upload(ctx, "plan.pdf", strings.NewReader("x"))

			Convey("Then only the fixed message is surfaced", func() {
				So(errors.Is(err, client.ErrUploadFailed), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "Upload failed")
				So(err.Error(), ShouldNotContainSubstring, "disk full")
			})
		})
	})
}
