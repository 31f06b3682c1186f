package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/byflash/drive-cli/internal/models"
)

func newTestClient(t *testing.T, handler nethttp.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{BaseURL: server.URL, Token: "tok-1"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, server
}

func TestLoginStoresToken(t *testing.T) {
	client, _ := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Query().Get("action") != "login" {
			t.Errorf("action = %q, want login", r.URL.Query().Get("action"))
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "me@example.com" || body["password"] != "pw" {
			t.Errorf("unexpected credentials: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true, "api_token": "tok-2", "email": "me@example.com",
		})
	})

	session, err := client.Login(context.Background(), "me@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token != "tok-2" || session.Email != "me@example.com" {
		t.Errorf("session = %+v", session)
	}
	if client.Token() != "tok-2" {
		t.Error("login must update the client token")
	}
}

func TestLoginRejectedCredentials(t *testing.T) {
	client, _ := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "bad login"})
	})

	_, err := client.Login(context.Background(), "me@example.com", "nope")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestListFilesNormalizesLooseFields(t *testing.T) {
	client, _ := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("group_id"); got != "g1" {
			t.Errorf("group_id = %q, want g1", got)
		}
		io.WriteString(w, `{"success": 1, "files": [
			{"id": 7, "name": "a.txt", "size": "123", "has_password": "1", "is_group_protected": 0},
			{"name": "ghost.txt"}
		]}`)
	})

	records, err := client.ListFiles(context.Background(), "g1")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (id-less row dropped)", len(records))
	}
	rec := records[0]
	if rec.ID != "7" || rec.Size != 123 || !rec.HasPassword || rec.GroupProtected {
		t.Errorf("normalized record = %+v", rec)
	}
}

func TestUnauthorizedBecomesSessionExpired(t *testing.T) {
	client, _ := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusUnauthorized)
	})

	_, err := client.ListFiles(context.Background(), "")
	if !errors.Is(err, ErrSessionExpired) {
		t.Errorf("err = %v, want ErrSessionExpired", err)
	}
}

func TestCheckGroupPasswordRejected(t *testing.T) {
	client, _ := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["group_id"] != "g1" || body["password"] != "guess" {
			t.Errorf("unexpected body: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "wrong password"})
	})

	err := client.CheckGroupPassword(context.Background(), "g1", "guess")
	if !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("err = %v, want ErrInvalidPassword", err)
	}
}

func TestMoveSendsIDsAndTarget(t *testing.T) {
	client, _ := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var body struct {
			IDs    []string `json:"ids"`
			Target string   `json:"target_group_id"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.IDs) != 2 || body.IDs[0] != "f1" || body.Target != MoveTargetRoot {
			t.Errorf("unexpected move body: %+v", body)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})

	if err := client.Move(context.Background(), []string{"f1", "f2"}, MoveTargetRoot); err != nil {
		t.Fatalf("Move: %v", err)
	}
}

func TestDeleteAndRestoreAcks(t *testing.T) {
	var actions []string
	client, _ := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		actions = append(actions, r.URL.Query().Get("action"))
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})

	if err := client.Delete(context.Background(), "f1", models.ItemTypeFile); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := client.Restore(context.Background(), "f1"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(actions) != 2 || actions[0] != "delete" || actions[1] != "restore" {
		t.Errorf("actions = %v", actions)
	}
}

func TestUploadSendsMultipartForm(t *testing.T) {
	client, _ := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("group_id"); got != "g1" {
			t.Errorf("group_id = %q", got)
		}
		if got := r.FormValue("password"); got != "s3cret" {
			t.Errorf("password = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "notes.txt" || string(data) != "hello" {
			t.Errorf("file = %q content %q", header.Filename, data)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})

	err := client.Upload(context.Background(), UploadRequest{
		Name:     "notes.txt",
		Content:  strings.NewReader("hello"),
		GroupID:  "g1",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
}

func TestDownloadStreamsWithMetadata(t *testing.T) {
	client, _ := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if got := r.URL.Query().Get("password"); got != "pw" {
			t.Errorf("password = %q", got)
		}
		w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
		w.Header().Set("Content-Type", "application/octet-stream")
		io.WriteString(w, "binary-data")
	})

	result, err := client.Download(context.Background(), "f1", "pw")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer result.Body.Close()

	if result.Name != "report.pdf" {
		t.Errorf("Name = %q, want report.pdf", result.Name)
	}
	data, _ := io.ReadAll(result.Body)
	if string(data) != "binary-data" {
		t.Errorf("body = %q", data)
	}
}

func TestDownloadJSONErrorEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "incorrect password"})
	})

	_, err := client.Download(context.Background(), "f1", "bad")
	if !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("err = %v, want ErrInvalidPassword", err)
	}
}

func TestIsPasswordErrorPatterns(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrInvalidPassword, true},
		{errors.New("server said: Mot de passe incorrect"), true},
		{errors.New("wrong password supplied"), true},
		{errors.New("disk full"), false},
	}
	for _, tc := range cases {
		if got := IsPasswordError(tc.err); got != tc.want {
			t.Errorf("IsPasswordError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestRenameSendsNewName(t *testing.T) {
	client, _ := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Query().Get("action") != "rename" {
			t.Errorf("action = %q, want rename", r.URL.Query().Get("action"))
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["id"] != "f1" || body["new_name"] != "renamed.txt" {
			t.Errorf("unexpected body: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})

	if err := client.Rename(context.Background(), "f1", "renamed.txt"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
}
