package mailin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/rumahkita/rumahkita-backend/internal/models"
	"github.com/rumahkita/rumahkita-backend/internal/repository"
	"github.com/rumahkita/rumahkita-backend/internal/storage"
	"github.com/rumahkita/rumahkita-backend/internal/websocket"
)

// Session implements the go-smtp Session interface
type Session struct {
	backend    *Backend
	from       string
	remoteAddr string
	inquiries  []uint
}

// NewSession creates a new SMTP session
func NewSession(backend *Backend) *Session {
	return &Session{
		backend:   backend,
		inquiries: make([]uint, 0),
	}
}

// AuthPlain handles PLAIN authentication (not required for receiving)
func (s *Session) AuthPlain(username, password string) error {
	return nil
}

// Mail handles the MAIL FROM command
func (s *Session) Mail(from string, opts *smtp.MailOptions) error {
	s.from = from
	if s.backend.logger != nil {
		s.backend.logger.Debug("MAIL FROM", slog.String("from", from))
	}
	return nil
}

// Rcpt handles the RCPT TO command. Only inquiry-<id>@<mail domain>
// addresses for open inquiries are accepted.
func (s *Session) Rcpt(to string, opts *smtp.RcptOptions) error {
	inquiryID, domain, err := ParseInquiryAddress(to)
	if err != nil {
		s.backend.security.RejectedRecipient(s.remoteAddr, to, "invalid_address")
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 1, 1},
			Message:      "Invalid recipient address",
		}
	}

	if domain != s.backend.mailDomain {
		s.backend.security.RejectedRecipient(s.remoteAddr, to, "unknown_domain")
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 1, 2},
			Message:      "Unknown recipient domain",
		}
	}

	ctx := context.Background()
	inquiry, err := s.backend.inquiryRepo.GetByID(ctx, inquiryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.backend.security.RejectedRecipient(s.remoteAddr, to, "no_such_inquiry")
			return &smtp.SMTPError{
				Code:         550,
				EnhancedCode: smtp.EnhancedCode{5, 1, 1},
				Message:      "No such inquiry",
			}
		}
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "Temporary error",
		}
	}

	if inquiry.Status == models.InquiryStatusClosed {
		s.backend.security.RejectedRecipient(s.remoteAddr, to, "inquiry_closed")
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      "Inquiry is closed",
		}
	}

	s.inquiries = append(s.inquiries, inquiryID)
	if s.backend.logger != nil {
		s.backend.logger.Debug("RCPT TO", slog.String("to", to), slog.Uint64("inquiry_id", uint64(inquiryID)))
	}
	return nil
}

// Data handles the DATA command - receives the email content
func (s *Session) Data(r io.Reader) error {
	if len(s.inquiries) == 0 {
		return &smtp.SMTPError{
			Code:         503,
			EnhancedCode: smtp.EnhancedCode{5, 5, 1},
			Message:      "No recipients specified",
		}
	}

	mail, err := ParseMail(r)
	if err != nil {
		if s.backend.logger != nil {
			s.backend.logger.Error("failed to parse email", slog.Any("error", err))
		}
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Failed to parse email",
		}
	}

	// Override sender from envelope if not in headers
	if mail.SenderEmail == "" {
		mail.SenderEmail = s.from
	}

	ctx := context.Background()

	for _, inquiryID := range s.inquiries {
		if err := s.processMail(ctx, inquiryID, mail); err != nil {
			if s.backend.logger != nil {
				s.backend.logger.Error("failed to process email",
					slog.Uint64("inquiry_id", uint64(inquiryID)),
					slog.Any("error", err))
			}
			// Continue processing other recipients
		}
	}

	if s.backend.logger != nil {
		s.backend.logger.Info("email received",
			slog.String("from", s.from),
			slog.Int("inquiries", len(s.inquiries)),
			slog.String("subject", mail.Subject))
	}

	return nil
}

// processMail appends the mail to a single inquiry's thread
func (s *Session) processMail(ctx context.Context, inquiryID uint, mail *InboundMail) error {
	inquiry, err := s.backend.inquiryRepo.GetByID(ctx, inquiryID)
	if err != nil {
		return fmt.Errorf("failed to load inquiry: %w", err)
	}

	receivedAt := time.Now()

	text := mail.Text
	if text == "" {
		text = mail.Subject
	}

	// Mail intake always writes the legacy blob shape. The thread decoder
	// attributes blob fragments to the tenant, which matches: only tenants
	// reply by email.
	if text != "" {
		if err := s.backend.inquiryRepo.AppendLegacyText(ctx, inquiryID, text, receivedAt); err != nil {
			return fmt.Errorf("failed to append mail text: %w", err)
		}
	}

	var attachments []models.Attachment
	for _, att := range mail.Attachments {
		if err := storage.ValidateFile(att.Filename, att.Size); err != nil {
			s.backend.security.BlockedFileUpload(s.remoteAddr, att.Filename, err.Error())
			continue
		}

		filePath, err := s.backend.fileStorage.Save(att.Filename, att.Content)
		if err != nil {
			if s.backend.logger != nil {
				s.backend.logger.Error("failed to save attachment",
					slog.String("filename", att.Filename),
					slog.Any("error", err))
			}
			continue
		}

		attachments = append(attachments, models.Attachment{
			InquiryID:  inquiryID,
			FileName:   att.Filename,
			FileType:   att.ContentType,
			FileSize:   att.Size,
			FilePath:   filePath,
			UploadedBy: inquiry.TenantID,
			CreatedAt:  receivedAt,
		})
	}

	if err := s.backend.attachmentRepo.CreateBatch(ctx, attachments); err != nil {
		return fmt.Errorf("failed to store attachments: %w", err)
	}

	if s.backend.wsHub != nil {
		s.backend.wsHub.BroadcastThreadUpdated(inquiryID, &websocket.ThreadUpdatedPayload{
			InquiryID: inquiryID,
			Status:    string(inquiry.Status),
			UpdatedAt: receivedAt.Format(time.RFC3339),
		})
	}

	return nil
}

// Reset resets the session state
func (s *Session) Reset() {
	s.from = ""
	s.inquiries = make([]uint, 0)
}

// Logout handles the end of the session
func (s *Session) Logout() error {
	return nil
}
