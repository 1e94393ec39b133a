package handlers_test

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/vedran77/chirp/internal/domain"
	limiter "github.com/vedran77/chirp/internal/ratelimit/memory"
	repo "github.com/vedran77/chirp/internal/repository/memory"
	"github.com/vedran77/chirp/internal/service"
	"github.com/vedran77/chirp/internal/transport/http/handlers"
)

//go:embed api.yaml
var apiSpec []byte

const jwtSecret = "test-secret"

func TestAPI(t *testing.T) {
	suite.Run(t, &APISuite{})
}

type APISuite struct {
	suite.Suite

	server        *httptest.Server
	client        http.Client
	apiSpecRouter routers.Router
	directory     *stubDirectory
}

type stubDirectory struct {
	profiles map[string]domain.AuthorProfile
}

func (d *stubDirectory) LookupMany(ctx context.Context, ids []string) (map[string]domain.AuthorProfile, error) {
	found := make(map[string]domain.AuthorProfile)
	for _, id := range ids {
		if p, ok := d.profiles[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}

type RoundTripperFunc func(req *http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func username(s string) *string { return &s }

func (s *APISuite) SetupTest() {
	ctx := context.Background()

	s.directory = &stubDirectory{profiles: map[string]domain.AuthorProfile{
		"alice": {ID: "alice", Username: username("alice"), ImageURL: "http://x/a.png"},
		"bob":   {ID: "bob", Username: username("bob"), ImageURL: "http://x/b.png"},
	}}

	svc := service.NewPostService(repo.NewPostRepo(), s.directory, limiter.NewLimiter(3, time.Minute))
	router := handlers.NewRouter(handlers.NewPostHandler(svc), nil, jwtSecret)
	s.server = httptest.NewServer(router)

	spec, err := openapi3.NewLoader().LoadFromData(apiSpec)
	s.Require().NoError(err)
	s.Require().NoError(spec.Validate(ctx))
	specRouter, err := legacy.NewRouter(spec)
	s.Require().NoError(err)
	s.apiSpecRouter = specRouter
	s.client.Transport = s.specValidating(http.DefaultTransport)
}

func (s *APISuite) TearDownTest() {
	s.server.Close()
}

// specValidating checks every request and response exchanged by the suite
// against the embedded OpenAPI document.
func (s *APISuite) specValidating(transport http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		ctx := req.Context()

		route, params, err := s.apiSpecRouter.FindRoute(req)
		s.Require().NoError(err, "no route in api.yaml for %s %s", req.Method, req.URL.Path)

		reqBody := s.bufferBody(&req.Body)
		reqDescriptor := &openapi3filter.RequestValidationInput{
			Request:     req,
			PathParams:  params,
			QueryParams: req.URL.Query(),
			Route:       route,
		}
		s.Require().NoError(openapi3filter.ValidateRequest(ctx, reqDescriptor))

		req.Body = io.NopCloser(bytes.NewReader(reqBody))
		resp, err := transport.RoundTrip(req)
		if err != nil {
			return nil, err
		}

		respBody := s.bufferBody(&resp.Body)
		s.Require().NoError(openapi3filter.ValidateResponse(ctx, &openapi3filter.ResponseValidationInput{
			RequestValidationInput: reqDescriptor,
			Status:                 resp.StatusCode,
			Header:                 resp.Header,
			Body:                   io.NopCloser(bytes.NewReader(respBody)),
		}))

		resp.Body = io.NopCloser(bytes.NewReader(respBody))
		return resp, nil
	})
}

func (s *APISuite) bufferBody(body *io.ReadCloser) []byte {
	if *body == nil {
		return nil
	}
	data, err := io.ReadAll(*body)
	s.Require().NoError(err)
	*body = io.NopCloser(bytes.NewReader(data))
	return data
}

func (s *APISuite) token(authorID string) string {
	claims := jwt.MapClaims{
		"sub": authorID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	s.Require().NoError(err)
	return token
}

func (s *APISuite) get(path string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+path, nil)
	s.Require().NoError(err)
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *APISuite) createPost(authorID, content string) *http.Response {
	body, err := json.Marshal(map[string]string{"content": content})
	s.Require().NoError(err)
	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/api/v1/posts", bytes.NewReader(body))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if authorID != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(authorID))
	}
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *APISuite) decode(resp *http.Response, into any) {
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(into))
}

func (s *APISuite) TestHealth() {
	resp := s.get("/health")
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (s *APISuite) TestCreateRequiresAuth() {
	resp := s.createPost("", "🎉")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func (s *APISuite) TestCreateAndReadBack() {
	resp := s.createPost("alice", "🎉")
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var post domain.Post
	s.decode(resp, &post)
	s.NotEqual(uuid.Nil, post.ID)
	s.Equal("alice", post.AuthorID)
	s.Equal("🎉", post.Content)
	s.WithinDuration(time.Now(), post.CreatedAt, 5*time.Second)

	feedResp := s.get("/api/v1/posts")
	s.Require().Equal(http.StatusOK, feedResp.StatusCode)

	var feed handlers.FeedResponse
	s.decode(feedResp, &feed)
	s.Require().Len(feed.Posts, 1)
	s.Equal("🎉", feed.Posts[0].Post.Content)
	s.Equal("alice", *feed.Posts[0].Author.Username)
	s.Equal("http://x/a.png", feed.Posts[0].Author.ImageURL)

	permalink := s.get("/api/v1/posts/" + post.ID.String())
	s.Require().Equal(http.StatusOK, permalink.StatusCode)

	var view domain.PostView
	s.decode(permalink, &view)
	s.Equal(post.ID, view.Post.ID)
	s.Equal("🎉", view.Post.Content)
	s.Equal("alice", *view.Author.Username)
}

func (s *APISuite) TestCreateRejectsPlainText() {
	resp := s.createPost("alice", "hello")
	s.Require().Equal(http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	s.decode(resp, &body)
	s.Equal("VALIDATION_ERROR", body.Error.Code)
	s.Equal("Only emoji are allowed.", body.Error.Fields["content"])
}

func (s *APISuite) TestCreateRejectsBadJSON() {
	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/api/v1/posts", bytes.NewReader([]byte("{")))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token("alice"))

	// Bypass the spec-validating transport: the point is a malformed body.
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *APISuite) TestCreateRateLimited() {
	for i := 0; i < 3; i++ {
		resp := s.createPost("alice", "🔥")
		s.Require().Equal(http.StatusCreated, resp.StatusCode, "post %d within quota", i+1)
		resp.Body.Close()
	}

	resp := s.createPost("alice", "🔥")
	s.Equal(http.StatusTooManyRequests, resp.StatusCode)
	resp.Body.Close()

	// Another author is unaffected.
	resp = s.createPost("bob", "🔥")
	s.Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func (s *APISuite) TestUserFeedFiltersAuthor() {
	for _, author := range []string{"alice", "bob", "alice"} {
		resp := s.createPost(author, "🎉")
		s.Require().Equal(http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := s.get("/api/v1/users/alice/posts")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var feed handlers.FeedResponse
	s.decode(resp, &feed)
	s.Require().Len(feed.Posts, 2)
	for _, v := range feed.Posts {
		s.Equal("alice", v.Post.AuthorID)
	}
}

func (s *APISuite) TestGetUnknownPost() {
	resp := s.get("/api/v1/posts/" + uuid.NewString())
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *APISuite) TestGetMalformedPostID() {
	resp := s.get("/api/v1/posts/not-a-uuid")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
