package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/byflash/drive-cli/internal/models"
)

// Login authenticates with email and password and stores the returned
// bearer token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (models.Session, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := c.doRequest(ctx, nethttp.MethodPost, "login", nil, body)
	if err != nil {
		return models.Session{}, err
	}

	var out struct {
		Success  models.Flag `json:"success"`
		APIToken string      `json:"api_token"`
		Email    string      `json:"email"`
		Error    string      `json:"error"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return models.Session{}, err
	}
	if !out.Success {
		if out.Error != "" {
			return models.Session{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, out.Error)
		}
		return models.Session{}, ErrInvalidCredentials
	}

	c.token = out.APIToken
	return models.Session{Token: out.APIToken, Email: out.Email}, nil
}

// ListFiles fetches the file listing. A non-empty groupID restricts the
// listing server-side to that folder; the full listing is returned otherwise.
func (c *Client) ListFiles(ctx context.Context, groupID string) ([]models.FileRecord, error) {
	var query url.Values
	if groupID != "" {
		query = url.Values{"group_id": {groupID}}
	}
	resp, err := c.doRequest(ctx, nethttp.MethodGet, "files", query, nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Success models.Flag      `json:"success"`
		Files   []models.FileRow `json:"files"`
		Error   string           `json:"error"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, actionError("files", out.Error)
	}
	return models.NormalizeFiles(out.Files), nil
}

// ListTrash fetches the soft-deleted items.
func (c *Client) ListTrash(ctx context.Context) ([]models.TrashEntry, error) {
	resp, err := c.doRequest(ctx, nethttp.MethodGet, "trash_list", nil, nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Success models.Flag       `json:"success"`
		Trash   []models.TrashRow `json:"trash"`
		Error   string            `json:"error"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, actionError("trash_list", out.Error)
	}
	return models.NormalizeTrash(out.Trash), nil
}

// Delete soft-deletes a file or a whole folder. The item moves to the trash
// and can be restored until the trash is purged server-side.
func (c *Client) Delete(ctx context.Context, id string, itemType models.ItemType) error {
	body := map[string]string{"id": id, "type": string(itemType)}
	resp, err := c.doRequest(ctx, nethttp.MethodPost, "delete", nil, body)
	if err != nil {
		return err
	}
	return decodeAck(resp, "delete")
}

// Restore brings a trashed item back to the file listing.
func (c *Client) Restore(ctx context.Context, id string) error {
	body := map[string]string{"id": id}
	resp, err := c.doRequest(ctx, nethttp.MethodPost, "restore", nil, body)
	if err != nil {
		return err
	}
	return decodeAck(resp, "restore")
}

// Rename changes a file's display name.
func (c *Client) Rename(ctx context.Context, id, newName string) error {
	body := map[string]string{"id": id, "new_name": newName}
	resp, err := c.doRequest(ctx, nethttp.MethodPost, "rename", nil, body)
	if err != nil {
		return err
	}
	return decodeAck(resp, "rename")
}

// MoveTargetRoot moves files out of any folder back to the root listing.
const MoveTargetRoot = "root"

// Move reassigns the given files to targetGroupID. Passing MoveTargetRoot
// clears their folder membership.
func (c *Client) Move(ctx context.Context, ids []string, targetGroupID string) error {
	body := map[string]interface{}{
		"ids":             ids,
		"target_group_id": targetGroupID,
	}
	resp, err := c.doRequest(ctx, nethttp.MethodPost, "move", nil, body)
	if err != nil {
		return err
	}
	return decodeAck(resp, "move")
}

// CheckGroupPassword verifies a folder password server-side. A rejected
// password returns ErrInvalidPassword.
func (c *Client) CheckGroupPassword(ctx context.Context, groupID, password string) error {
	body := map[string]string{"group_id": groupID, "password": password}
	resp, err := c.doRequest(ctx, nethttp.MethodPost, "check_group_password", nil, body)
	if err != nil {
		return err
	}

	var out struct {
		Success models.Flag `json:"success"`
		Error   string      `json:"error"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return err
	}
	if !out.Success {
		if out.Error != "" {
			return fmt.Errorf("%w: %s", ErrInvalidPassword, out.Error)
		}
		return ErrInvalidPassword
	}
	return nil
}

// UpdateGroupRequest carries the editable folder settings. An empty Password
// leaves the current protection unchanged.
type UpdateGroupRequest struct {
	GroupID  string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Password string `json:"password"`
}

// UpdateGroup saves folder settings (name, color, optional password).
func (c *Client) UpdateGroup(ctx context.Context, req UpdateGroupRequest) error {
	resp, err := c.doRequest(ctx, nethttp.MethodPost, "update_group", nil, req)
	if err != nil {
		return err
	}
	return decodeAck(resp, "update_group")
}

// UploadRequest describes one file upload.
type UploadRequest struct {
	// Name is the filename sent to the server.
	Name string
	// Content is the file data. The caller keeps ownership and closes it.
	Content io.Reader
	// GroupID assigns the file to a folder. Required; uploads to the root
	// still carry a freshly generated group id the server will ignore until
	// a second file joins it.
	GroupID string
	// Password optionally protects the file.
	Password string
	// Progress, when non-nil, receives the bytes as they are sent.
	Progress io.Writer
}

// Upload streams one file to the server as multipart form data.
func (c *Client) Upload(ctx context.Context, req UploadRequest) error {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		var err error
		defer func() { pw.CloseWithError(err) }()

		part, ferr := form.CreateFormFile("file", req.Name)
		if ferr != nil {
			err = ferr
			return
		}
		content := req.Content
		if req.Progress != nil {
			content = io.TeeReader(content, req.Progress)
		}
		if _, cerr := io.Copy(part, content); cerr != nil {
			err = cerr
			return
		}
		if ferr := form.WriteField("group_id", req.GroupID); ferr != nil {
			err = ferr
			return
		}
		if req.Password != "" {
			if ferr := form.WriteField("password", req.Password); ferr != nil {
				err = ferr
				return
			}
		}
		err = form.Close()
	}()

	httpReq, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, c.actionURL("upload", nil), pr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error().Err(err).Str("file", req.Name).Msg("upload failed")
		return fmt.Errorf("upload failed: %w", err)
	}
	if resp.StatusCode == nethttp.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return ErrSessionExpired
	}
	return decodeAck(resp, "upload")
}

// DownloadResult is an open download stream plus the metadata that came with
// it. The caller must close Body.
type DownloadResult struct {
	Body io.ReadCloser
	// Name is the server-suggested filename, empty when the server sent none.
	Name string
	// Size is the advertised content length, -1 when unknown.
	Size int64
}

// Download opens a download stream for one file. password is required for
// protected files; a rejected password returns ErrInvalidPassword.
func (c *Client) Download(ctx context.Context, fileID, password string) (*DownloadResult, error) {
	query := url.Values{"id": {fileID}}
	if password != "" {
		query.Set("password", password)
	}
	return c.openStream(ctx, "download", query)
}

// DownloadFolder opens a download stream for a whole folder, delivered as a
// single archive.
func (c *Client) DownloadFolder(ctx context.Context, groupID string) (*DownloadResult, error) {
	query := url.Values{"group_id": {groupID}}
	return c.openStream(ctx, "download_folder", query)
}

func (c *Client) openStream(ctx context.Context, action string, query url.Values) (*DownloadResult, error) {
	resp, err := c.doRequest(ctx, nethttp.MethodGet, action, query, nil)
	if err != nil {
		return nil, err
	}

	// The server answers errors as a JSON envelope even on this endpoint,
	// a successful download streams raw bytes instead.
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var out struct {
			Success models.Flag `json:"success"`
			Error   string      `json:"error"`
		}
		if err := decodeJSON(resp, &out); err != nil {
			return nil, err
		}
		if IsPasswordError(fmt.Errorf("%s", out.Error)) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPassword, out.Error)
		}
		return nil, actionError(action, out.Error)
	}
	if resp.StatusCode != nethttp.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("%s failed: status %d: %s", action, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return &DownloadResult{
		Body: resp.Body,
		Name: filenameFromDisposition(resp.Header.Get("Content-Disposition")),
		Size: resp.ContentLength,
	}, nil
}

func filenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// decodeAck handles the plain {success, error} acknowledgement envelope.
func decodeAck(resp *nethttp.Response, action string) error {
	var out struct {
		Success models.Flag `json:"success"`
		Error   string      `json:"error"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return err
	}
	if !out.Success {
		return actionError(action, out.Error)
	}
	return nil
}

func actionError(action, message string) error {
	if message == "" {
		return fmt.Errorf("%s failed", action)
	}
	return fmt.Errorf("%s failed: %s", action, message)
}
