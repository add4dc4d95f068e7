// Пакет convert реализует загрузку PDF во внешний сервис конвертации и
// процесс получения структурированного документа.
//
// Основные возможности:
//   - HTTP-клиент сервиса конвертации с длинным таймаутом и keep-alive.
//   - Конечный автомат загрузки: Idle -> Uploading -> Success/Error.
//   - Отклонение не-PDF файлов без единого сетевого запроса.
//   - Уведомление подписчика о готовом документе ровно один раз на загрузку.
package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/apierrors"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/tiptap"
)

// Конвертация большого PDF занимает минуты, таймаут покрывает весь запрос
const requestTimeout = 300000 * time.Millisecond

const maxResponseSize = 64 << 20

// Client - клиент внешнего сервиса конвертации PDF в документ.
type Client struct {
	url string
	cl  *retryablehttp.Client
}

func NewClient(serviceURL string) *Client {
	cl := retryablehttp.NewClient()
	// Повтор заново гнал бы многомегабайтный PDF в сервис, который уже
	// мог начать конвертацию. Ошибка отдается пользователю сразу.
	cl.RetryMax = 0
	cl.HTTPClient.Timeout = requestTimeout
	cl.Logger = slog.Default()
	// 5xx от сервиса несет тело {"error": ...}, ответ нужен как есть
	cl.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{url: serviceURL, cl: cl}
}

// Convert отправляет PDF в сервис конвертации и возвращает
// структурированный документ.
func (c *Client) Convert(ctx context.Context, file io.Reader, filename string) (*tiptap.Document, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", c.url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Connection", "keep-alive")

	resp, err := c.cl.Do(req)
	if err != nil {
		return nil, apierrors.ErrConversionFailed.WithFormattedMessage(err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, apierrors.ErrConversionFailed.WithFormattedMessage(err.Error())
	}

	// Сервис сообщает об ошибке телом {"error": "..."} и на 200, и на 5xx
	var failure struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &failure); err == nil && failure.Error != "" {
		return nil, apierrors.ErrConversionFailed.WithFormattedMessage(failure.Error)
	}

	if resp.StatusCode/100 != 2 {
		return nil, apierrors.ErrConversionFailed.WithFormattedMessage(fmt.Sprintf("status %d", resp.StatusCode))
	}

	if !tiptap.IsValidContent(raw) {
		return nil, apierrors.ErrConversionBadReply
	}

	doc, err := tiptap.ParseJSON(bytes.NewReader(raw))
	if err != nil {
		slog.Error("Parse conversion response", "err", err)
		return nil, apierrors.ErrConversionBadReply
	}

	return doc, nil
}
