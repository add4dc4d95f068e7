package convert

import (
	"context"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/apierrors"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/tiptap"
)

// Status - состояние процесса загрузки.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

var uploadsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "aidoc",
	Name:      "convert_uploads_total",
	Help:      "Total count of PDF upload attempts by result",
}, []string{"result"})

func init() {
	prometheus.MustRegister(uploadsCounter)
}

// Converter - клиент сервиса конвертации. Выделен в интерфейс для
// подмены в тестах.
type Converter interface {
	Convert(ctx context.Context, file io.Reader, filename string) (*tiptap.Document, error)
}

// Service - конечный автомат загрузки и конвертации PDF.
// Одна загрузка за раз; результат хранится до явного сброса.
type Service struct {
	mu sync.Mutex

	client Converter
	status Status
	result *tiptap.Document
	err    error

	onSuccess func(*tiptap.Document)
}

func NewService(client Converter) *Service {
	return &Service{
		client: client,
		status: StatusIdle,
	}
}

// OnSuccess регистрирует обработчик, вызываемый ровно один раз на каждую
// успешную загрузку с готовым документом.
func (s *Service) OnSuccess(fn func(*tiptap.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSuccess = fn
}

// Upload проверяет файл и отправляет его в сервис конвертации.
// Не-PDF файл отклоняется до каких-либо сетевых запросов: проверяется
// только заявленный MIME-тип, содержимое не читается.
func (s *Service) Upload(ctx context.Context, file io.Reader, filename string, contentType string) error {
	s.mu.Lock()

	if s.status == StatusUploading {
		s.mu.Unlock()
		return apierrors.ErrConversionBusy
	}

	if contentType != "application/pdf" {
		s.status = StatusError
		s.err = apierrors.ErrNotPDF
		s.result = nil
		s.mu.Unlock()
		uploadsCounter.WithLabelValues("rejected").Inc()
		return apierrors.ErrNotPDF
	}

	s.status = StatusUploading
	s.err = nil
	s.result = nil
	s.mu.Unlock()

	doc, err := s.client.Convert(ctx, file, filename)

	s.mu.Lock()
	if err != nil {
		s.status = StatusError
		s.err = err
		s.mu.Unlock()
		uploadsCounter.WithLabelValues("error").Inc()
		return err
	}

	s.status = StatusSuccess
	s.result = doc
	fn := s.onSuccess
	s.mu.Unlock()

	uploadsCounter.WithLabelValues("success").Inc()
	if fn != nil {
		fn(doc.Clone())
	}
	return nil
}

// Status возвращает текущее состояние загрузки.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// IsUploading сообщает, идет ли загрузка прямо сейчас.
func (s *Service) IsUploading() bool {
	return s.Status() == StatusUploading
}

// Result возвращает документ последней успешной конвертации или nil.
func (s *Service) Result() *tiptap.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	return s.result.Clone()
}

// Err возвращает ошибку последней неудачной загрузки или nil.
func (s *Service) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ClearResult сбрасывает автомат в исходное состояние после того, как
// результат принят редактором.
func (s *Service) ClearResult() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusUploading {
		return
	}
	s.status = StatusIdle
	s.result = nil
	s.err = nil
}
