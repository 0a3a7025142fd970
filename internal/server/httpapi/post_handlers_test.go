package httpapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

// doMultipart sends a multipart form with the given fields and, when fileName
// is non-empty, a `file` part carrying a tiny payload.
func doMultipart(t *testing.T, env *testEnv, method, path string, fields map[string]string, fileName string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("writing field %q: %v", k, err)
		}
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("creating file part: %v", err)
		}
		if _, err := part.Write([]byte("image-bytes")); err != nil {
			t.Fatalf("writing file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func createTestPost(t *testing.T, env *testEnv, cookies []*http.Cookie, title string) string {
	t.Helper()
	rec := doMultipart(t, env, http.MethodPost, "/create", map[string]string{
		"title": title, "subtitle": "sub", "content": "body",
	}, "cover.png", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	post, ok := body["post"].(map[string]any)
	if !ok {
		t.Fatalf("missing post object: %v", body)
	}
	id, _ := post["id"].(string)
	if id == "" {
		t.Fatalf("missing post id: %v", post)
	}
	return id
}

func TestCreatePostEndpoint(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice", "a@x.com", "secret1")
	cookies := login(t, env, "a@x.com", "secret1")

	rec := doMultipart(t, env, http.MethodPost, "/create", map[string]string{
		"title": "Hello", "subtitle": "sub", "content": "World",
	}, "cover.png", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["status"] != "success" {
		t.Fatalf("unexpected body: %v", body)
	}
	post := body["post"].(map[string]any)
	if post["author"] != "alice" || post["title"] != "Hello" {
		t.Fatalf("unexpected post: %v", post)
	}
	if post["imageUrl"] != "http://images.local/cover.png" {
		t.Fatalf("unexpected image url: %v", post["imageUrl"])
	}

	t.Run("no session", func(t *testing.T) {
		rec := doMultipart(t, env, http.MethodPost, "/create", map[string]string{
			"title": "Hello", "content": "World",
		}, "cover.png", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status %d, want 401", rec.Code)
		}
	})

	t.Run("image required", func(t *testing.T) {
		rec := doMultipart(t, env, http.MethodPost, "/create", map[string]string{
			"title": "Hello", "content": "World",
		}, "", cookies)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", rec.Code)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		rec := doMultipart(t, env, http.MethodPost, "/create", map[string]string{
			"content": "World",
		}, "cover.png", cookies)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", rec.Code)
		}
	})
}

func TestGetPostsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice", "a@x.com", "secret1")
	cookies := login(t, env, "a@x.com", "secret1")

	createTestPost(t, env, cookies, "first")
	createTestPost(t, env, cookies, "second")

	// Listing is public.
	req := httptest.NewRequest(http.MethodGet, "/getposts", nil)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var posts []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &posts); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(posts) != 2 || posts[0]["title"] != "second" || posts[1]["title"] != "first" {
		t.Fatalf("unexpected posts: %v", posts)
	}
	if posts[0]["author"] != "alice" {
		t.Fatalf("author not joined: %v", posts[0])
	}
	if _, leaked := posts[0]["authorEmail"]; leaked {
		t.Fatalf("list view must not carry author emails: %v", posts[0])
	}
}

func TestGetPostByIDEndpoint(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice", "a@x.com", "secret1")
	cookies := login(t, env, "a@x.com", "secret1")
	id := createTestPost(t, env, cookies, "Hello")

	rec := doJSON(t, env, http.MethodGet, "/getpostbyid/"+id, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["title"] != "Hello" || body["author"] != "alice" || body["authorEmail"] != "a@x.com" {
		t.Fatalf("unexpected body: %v", body)
	}

	t.Run("unknown id", func(t *testing.T) {
		rec := doJSON(t, env, http.MethodGet, "/getpostbyid/6ba7b810-9dad-11d1-80b4-00c04fd430c8", nil, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status %d, want 404", rec.Code)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := doJSON(t, env, http.MethodGet, "/getpostbyid/not-a-uuid", nil, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status %d, want 404", rec.Code)
		}
	})
}

func TestEditPostEndpoint(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice", "a@x.com", "secret1")
	register(t, env, "bob", "b@x.com", "secret2")

	aliceCookies := login(t, env, "a@x.com", "secret1")
	bobCookies := login(t, env, "b@x.com", "secret2")
	id := createTestPost(t, env, aliceCookies, "Original")

	rec := doMultipart(t, env, http.MethodPut, "/editpost/"+id, map[string]string{
		"title": "Edited", "content": "new body",
	}, "", aliceCookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["title"] != "Edited" {
		t.Fatalf("title not updated: %v", body)
	}
	if body["imageUrl"] != "http://images.local/cover.png" {
		t.Fatalf("image must survive an edit without a file: %v", body)
	}

	t.Run("foreign user forbidden", func(t *testing.T) {
		rec := doMultipart(t, env, http.MethodPut, "/editpost/"+id, map[string]string{
			"title": "Hijack", "content": "x",
		}, "", bobCookies)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status %d, want 403", rec.Code)
		}
	})
}

func TestDeletePostEndpoint(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice", "a@x.com", "secret1")
	register(t, env, "bob", "b@x.com", "secret2")

	aliceCookies := login(t, env, "a@x.com", "secret1")
	bobCookies := login(t, env, "b@x.com", "secret2")
	id := createTestPost(t, env, aliceCookies, "Doomed")

	rec := doJSON(t, env, http.MethodDelete, "/deletepost/"+id, nil, bobCookies)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign delete: status %d, want 403", rec.Code)
	}

	rec = doJSON(t, env, http.MethodDelete, "/deletepost/"+id, nil, aliceCookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner delete: status %d, body %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["message"] != "deleted" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = doJSON(t, env, http.MethodGet, "/getpostbyid/"+id, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleted post still served: status %d", rec.Code)
	}
}
