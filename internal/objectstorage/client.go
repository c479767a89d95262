// Package objectstorage реализует клиент S3-подобного хранилища объектов
// (REST API Supabase Storage) для аватаров пользователей.
//
// Объекты кладутся в бакет по ключу users/<owner>-<unixms><ext> и доступны
// по публичному URL <base>/storage/v1/object/public/<bucket>/<key>.
package objectstorage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/pharmacy-management/internal/config"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

const avatarPrefix = "users"

// ErrNotConfigured возвращается, если URL хранилища не задан.
var ErrNotConfigured = errors.New("object storage is not configured")

// Client клиент хранилища объектов.
type Client struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient создаёт клиент по настройкам ObjectStorage.
func NewClient(cfg config.ObjectStorage) *Client {
	timeout := cfg.StorageTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.StorageURL, "/"),
		serviceKey: cfg.StorageKey,
		bucket:     cfg.AvatarBucket,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

func (c *Client) newRequest(ctx context.Context, method, p string, body io.Reader) (*http.Request, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/storage/v1"+p, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	return req, nil
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// AvatarKey строит ключ объекта для аватара владельца.
func (c *Client) AvatarKey(owner, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return avatarPrefix + "/" + owner + "-" + strconv.FormatInt(c.now().UnixMilli(), 10) + ext
}

// PublicURL возвращает публичный адрес объекта.
func (c *Client) PublicURL(key string) string {
	return c.baseURL + "/storage/v1/object/public/" + c.bucket + "/" + key
}

// UploadAvatar загружает изображение и возвращает его публичный URL.
func (c *Client) UploadAvatar(ctx context.Context, owner string, avatar *models.Avatar) (string, error) {
	const op = "objectstorage.UploadAvatar"

	key := c.AvatarKey(owner, avatar.Filename)
	req, err := c.newRequest(ctx, http.MethodPost, "/object/"+c.bucket+"/"+key, bytes.NewReader(avatar.Data))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", avatar.ContentType)
	req.Header.Set("Cache-Control", "max-age=3600")
	req.Header.Set("x-upsert", "false")

	if err = c.do(req); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return c.PublicURL(key), nil
}

// DeleteAvatar удаляет объект по его публичному URL. Пустой URL игнорируется.
func (c *Client) DeleteAvatar(ctx context.Context, publicURL string) error {
	const op = "objectstorage.DeleteAvatar"
	if publicURL == "" {
		return nil
	}

	key, err := c.keyFromURL(publicURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	payload, err := json.Marshal(map[string][]string{"prefixes": {key}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req, err := c.newRequest(ctx, http.MethodDelete, "/object/"+c.bucket, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err = c.do(req); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// keyFromURL восстанавливает ключ объекта по последнему сегменту пути URL.
func (c *Client) keyFromURL(publicURL string) (string, error) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("no object name in %q", publicURL)
	}
	return avatarPrefix + "/" + name, nil
}
