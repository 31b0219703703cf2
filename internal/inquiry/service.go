package inquiry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/rumahkita/rumahkita-backend/internal/cache"
	apperrors "github.com/rumahkita/rumahkita-backend/internal/errors"
	"github.com/rumahkita/rumahkita-backend/internal/models"
	"github.com/rumahkita/rumahkita-backend/internal/repository"
	"github.com/rumahkita/rumahkita-backend/internal/storage"
	"github.com/rumahkita/rumahkita-backend/internal/thread"
	"github.com/rumahkita/rumahkita-backend/internal/validator"
	"github.com/rumahkita/rumahkita-backend/internal/websocket"
)

// Service implements the portal's inquiry operations on top of the
// repositories and the thread reconstruction core. It is the only writer to
// the unit and media caches.
type Service struct {
	inquiryRepo    repository.InquiryRepository
	attachmentRepo repository.AttachmentRepository
	propertyRepo   repository.PropertyRepository
	fileStorage    storage.FileStorage
	unitCache      cache.UnitCache
	mediaCache     *cache.MediaCache
	wsHub          *websocket.Hub
	window         time.Duration
	logger         *slog.Logger
}

// ServiceConfig holds the collaborators the service needs
type ServiceConfig struct {
	InquiryRepo    repository.InquiryRepository
	AttachmentRepo repository.AttachmentRepository
	PropertyRepo   repository.PropertyRepository
	FileStorage    storage.FileStorage
	UnitCache      cache.UnitCache
	MediaCache     *cache.MediaCache
	WSHub          *websocket.Hub
	Window         time.Duration
	Logger         *slog.Logger
}

// NewService creates a new inquiry service
func NewService(cfg *ServiceConfig) *Service {
	window := cfg.Window
	if window <= 0 {
		window = thread.DefaultWindow
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		inquiryRepo:    cfg.InquiryRepo,
		attachmentRepo: cfg.AttachmentRepo,
		propertyRepo:   cfg.PropertyRepo,
		fileStorage:    cfg.FileStorage,
		unitCache:      cfg.UnitCache,
		mediaCache:     cfg.MediaCache,
		wsHub:          cfg.WSHub,
		window:         window,
		logger:         logger,
	}
}

// ListForManager returns the manager's inquiries with one row per listing.
// The backend may hold several historical rows per property; the first
// occurrence in recency order wins.
func (s *Service) ListForManager(ctx context.Context, managerID uint) ([]models.Inquiry, error) {
	inquiries, err := s.inquiryRepo.ListByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	return thread.DeduplicateByListing(inquiries), nil
}

// ListItemsForManager returns lightweight list rows, deduplicated per listing.
// The total reflects the undeduplicated row count the pagination walks over.
func (s *Service) ListItemsForManager(ctx context.Context, managerID uint, limit, offset int) ([]models.InquiryListItem, int64, error) {
	items, total, err := s.inquiryRepo.ListItemsByManager(ctx, managerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return thread.DeduplicateListItems(items), total, nil
}

// GetInquiry loads one inquiry with its structured messages
func (s *Service) GetInquiry(ctx context.Context, inquiryID uint) (*models.Inquiry, error) {
	inquiry, err := s.inquiryRepo.GetByID(ctx, inquiryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrInquiryNotFound
		}
		return nil, err
	}
	return inquiry, nil
}

// GetThread reconstructs an inquiry's timeline: normalize the stored shape
// (structured rows or legacy blob), then correlate attachments into it.
// Legacy decode time is pinned to the inquiry's UpdatedAt so repeated calls
// over the same stored state yield identical output.
func (s *Service) GetThread(ctx context.Context, inquiryID uint) (*models.Inquiry, thread.Timeline, error) {
	inquiry, err := s.GetInquiry(ctx, inquiryID)
	if err != nil {
		return nil, thread.Timeline{}, err
	}

	attachments, err := s.attachmentRepo.ListByInquiry(ctx, inquiryID)
	if err != nil {
		return nil, thread.Timeline{}, err
	}

	messages := thread.NormalizeAt(inquiry, inquiry.UpdatedAt)
	timeline := thread.Correlate(messages, attachments, s.window)
	return inquiry, timeline, nil
}

// SendMessage stores a message on an open inquiry. It returns no message
// body: callers hold an optimistic local entry and reconcile against a
// subsequent GetThread to obtain the authoritative one.
func (s *Service) SendMessage(ctx context.Context, inquiryID, senderID uint, text string) error {
	if err := validator.ValidateMessageText(text); err != nil {
		return apperrors.NewAppError(apperrors.ErrInvalidInput, err.Error(), apperrors.CodeInvalidInput)
	}

	inquiry, err := s.GetInquiry(ctx, inquiryID)
	if err != nil {
		return err
	}
	if inquiry.Status == models.InquiryStatusClosed {
		return apperrors.ErrInquiryClosed
	}

	sender := models.SenderTenant
	if senderID == inquiry.ManagerID {
		sender = models.SenderManager
	}

	now := time.Now()
	message := &models.Message{
		InquiryID: inquiryID,
		SenderID:  senderID,
		Sender:    sender,
		Body:      text,
		CreatedAt: now,
	}
	if err := s.inquiryRepo.AppendMessage(ctx, message); err != nil {
		return err
	}

	// A manager reply moves the inquiry along its lifecycle
	if sender == models.SenderManager && inquiry.Status != models.InquiryStatusAssigned {
		if err := s.inquiryRepo.UpdateStatus(ctx, inquiryID, models.InquiryStatusResponded); err != nil {
			s.logger.Warn("failed to update inquiry status",
				slog.Uint64("inquiry_id", uint64(inquiryID)),
				slog.Any("error", err))
		}
	}

	s.broadcast(inquiryID, inquiry.Status, now)
	return nil
}

// UploadFile describes one file in a multipart upload
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadAttachments validates, stores and records uploaded files, returning
// the created metadata in upload order
func (s *Service) UploadAttachments(ctx context.Context, inquiryID, uploadedBy uint, files []UploadFile) ([]models.Attachment, error) {
	inquiry, err := s.GetInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.Status == models.InquiryStatusClosed {
		return nil, apperrors.ErrInquiryClosed
	}

	now := time.Now()
	attachments := make([]models.Attachment, 0, len(files))
	for _, f := range files {
		if err := storage.ValidateFile(f.Filename, f.Size); err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrInvalidInput, err.Error(), apperrors.CodeInvalidInput)
		}

		filePath, err := s.fileStorage.Save(f.Filename, f.Content)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to store file")
		}

		attachments = append(attachments, models.Attachment{
			InquiryID:  inquiryID,
			FileName:   f.Filename,
			FileType:   f.ContentType,
			FileSize:   f.Size,
			FilePath:   filePath,
			UploadedBy: uploadedBy,
			CreatedAt:  now,
		})
	}

	if err := s.attachmentRepo.CreateBatch(ctx, attachments); err != nil {
		return nil, err
	}

	s.broadcast(inquiryID, inquiry.Status, now)
	return attachments, nil
}

// DownloadAttachment returns an attachment's content, serving repeat requests
// for the same attachment from the session media cache
func (s *Service) DownloadAttachment(ctx context.Context, attachmentID uint) (cache.MediaBlob, error) {
	if blob, ok := s.mediaCache.Get(attachmentID); ok {
		return blob, nil
	}

	attachment, err := s.attachmentRepo.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return cache.MediaBlob{}, apperrors.ErrAttachmentNotFound
		}
		return cache.MediaBlob{}, err
	}

	reader, err := s.fileStorage.Get(attachment.FilePath)
	if err != nil {
		return cache.MediaBlob{}, apperrors.Wrap(apperrors.ErrMediaUnavailable, err.Error())
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return cache.MediaBlob{}, apperrors.Wrap(apperrors.ErrMediaUnavailable, err.Error())
	}

	blob := cache.MediaBlob{
		Data:     data,
		MimeType: attachment.FileType,
		FileName: attachment.FileName,
	}
	// Put reports false after session close; the blob is still good for
	// this response, it just is not retained
	s.mediaCache.Put(attachmentID, blob)
	return blob, nil
}

// AssignTenant assigns the inquiry's tenant to a unit of its listing. On
// success the inquiry's status becomes assigned, visible to consoles after
// their next reconcile.
func (s *Service) AssignTenant(ctx context.Context, inquiryID, unitID uint) error {
	inquiry, err := s.GetInquiry(ctx, inquiryID)
	if err != nil {
		return err
	}
	if inquiry.Status == models.InquiryStatusClosed {
		return apperrors.ErrInquiryClosed
	}

	if err := s.propertyRepo.AssignUnit(ctx, unitID, inquiry.TenantID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperrors.ErrUnitNotFound
		case errors.Is(err, repository.ErrInvalidInput):
			return apperrors.ErrUnitOccupied
		default:
			return err
		}
	}

	if err := s.inquiryRepo.UpdateStatus(ctx, inquiryID, models.InquiryStatusAssigned); err != nil {
		return err
	}

	// Occupancy changed, so the cached unit list for this listing is stale
	if err := s.unitCache.Invalidate(inquiry.PropertyID); err != nil {
		s.logger.Warn("failed to invalidate unit cache",
			slog.Uint64("property_id", uint64(inquiry.PropertyID)),
			slog.Any("error", err))
	}

	s.broadcast(inquiryID, models.InquiryStatusAssigned, time.Now())
	return nil
}

// ListUnits returns a property's units. A fresh fetch refreshes the
// persisted cache; when the fetch fails, the last-known cached list is
// served instead so the assignment picker stays usable.
func (s *Service) ListUnits(ctx context.Context, propertyID uint) ([]models.Unit, error) {
	units, err := s.propertyRepo.ListUnits(ctx, propertyID)
	if err != nil {
		if cached, ok := s.unitCache.Get(propertyID); ok {
			s.logger.Warn("serving stale unit list from cache",
				slog.Uint64("property_id", uint64(propertyID)),
				slog.Any("error", err))
			return cached, nil
		}
		return nil, err
	}

	if err := s.unitCache.Put(propertyID, units); err != nil {
		s.logger.Warn("failed to refresh unit cache",
			slog.Uint64("property_id", uint64(propertyID)),
			slog.Any("error", err))
	}
	return units, nil
}

func (s *Service) broadcast(inquiryID uint, status models.InquiryStatus, at time.Time) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.BroadcastThreadUpdated(inquiryID, &websocket.ThreadUpdatedPayload{
		InquiryID: inquiryID,
		Status:    string(status),
		UpdatedAt: at.Format(time.RFC3339),
	})
}
