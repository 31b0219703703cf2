//go:build integration

package integration

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rumahkita/rumahkita-backend/internal/mailin"
	"github.com/rumahkita/rumahkita-backend/internal/models"
	"github.com/rumahkita/rumahkita-backend/internal/repository"
	"github.com/rumahkita/rumahkita-backend/internal/storage"
	"github.com/rumahkita/rumahkita-backend/tests/fixtures"
)

const testMailDomain = "mail.rumahkita.test"

// SMTPIntegrationTestSuite tests the mail intake server with a real database
type SMTPIntegrationTestSuite struct {
	suite.Suite
	container   testcontainers.Container
	db          *gorm.DB
	smtpAddr    string
	inquiryRepo repository.InquiryRepository
}

// SetupSuite starts PostgreSQL container and the intake server
func (s *SMTPIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "rumahkita_smtp_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(s.T(), err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=rumahkita_smtp_test sslmode=disable",
		host, port.Port())

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)
	s.db = db

	err = db.AutoMigrate(&models.Property{}, &models.Unit{}, &models.Inquiry{}, &models.Message{}, &models.Attachment{})
	require.NoError(s.T(), err)

	fileStorage, err := storage.NewLocalStorage(s.T().TempDir())
	require.NoError(s.T(), err)

	s.inquiryRepo = repository.NewInquiryRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db, fileStorage)

	backend := mailin.NewBackend(&mailin.BackendConfig{
		InquiryRepo:    s.inquiryRepo,
		AttachmentRepo: attachmentRepo,
		FileStorage:    fileStorage,
		MailDomain:     testMailDomain,
	})

	server := mailin.NewSecureServer(backend, &mailin.ServerConfig{
		Domain:        testMailDomain,
		AllowInsecure: true,
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(s.T(), err)
	s.smtpAddr = listener.Addr().String()

	go server.Serve(listener)
	time.Sleep(100 * time.Millisecond)
}

// TearDownSuite stops the PostgreSQL container
func (s *SMTPIntegrationTestSuite) TearDownSuite() {
	if s.container != nil {
		s.container.Terminate(context.Background())
	}
}

// SetupTest cleans up data before each test
func (s *SMTPIntegrationTestSuite) SetupTest() {
	s.db.Exec("TRUNCATE TABLE attachments, messages, inquiries, units, properties RESTART IDENTITY CASCADE")
}

func TestSMTPIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(SMTPIntegrationTestSuite))
}

// smtpSession drives a raw SMTP dialogue against the intake server
type smtpSession struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func (s *SMTPIntegrationTestSuite) dial() *smtpSession {
	conn, err := net.DialTimeout("tcp", s.smtpAddr, 5*time.Second)
	require.NoError(s.T(), err)
	sess := &smtpSession{t: s.T(), conn: conn, reader: bufio.NewReader(conn)}
	sess.expect("220")
	return sess
}

func (sess *smtpSession) send(line string) string {
	_, err := fmt.Fprintf(sess.conn, "%s\r\n", line)
	require.NoError(sess.t, err)
	return sess.read()
}

func (sess *smtpSession) read() string {
	sess.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	resp, err := sess.reader.ReadString('\n')
	require.NoError(sess.t, err)
	return strings.TrimSpace(resp)
}

func (sess *smtpSession) expect(code string) string {
	resp := sess.read()
	require.True(sess.t, strings.HasPrefix(resp, code), "expected %s, got %q", code, resp)
	return resp
}

func (sess *smtpSession) close() {
	sess.conn.Close()
}

func (s *SMTPIntegrationTestSuite) seedInquiry(inq *models.Inquiry) {
	require.NoError(s.T(), s.db.Create(fixtures.NewPropertyBuilder().
		WithID(inq.PropertyID).
		WithManagerID(inq.ManagerID).
		Build()).Error)
	require.NoError(s.T(), s.db.Create(inq).Error)
}

func (s *SMTPIntegrationTestSuite) TestReplyAppendsToLegacyBlob() {
	s.seedInquiry(fixtures.NewInquiryBuilder().WithLegacyBody("Initial question").Build())

	sess := s.dial()
	defer sess.close()

	resp := sess.send("HELO tenant.example.com")
	assert.True(s.T(), strings.HasPrefix(resp, "250"), resp)

	resp = sess.send("MAIL FROM:<tenant@example.com>")
	assert.True(s.T(), strings.HasPrefix(resp, "250"), resp)

	resp = sess.send(fmt.Sprintf("RCPT TO:<inquiry-1@%s>", testMailDomain))
	assert.True(s.T(), strings.HasPrefix(resp, "250"), resp)

	resp = sess.send("DATA")
	require.True(s.T(), strings.HasPrefix(resp, "354"), resp)

	mailBody := strings.Join([]string{
		"From: Tenant <tenant@example.com>",
		fmt.Sprintf("To: inquiry-1@%s", testMailDomain),
		"Subject: Re: Kos Melati",
		"",
		"Is the corner unit still free?",
		".",
	}, "\r\n")
	_, err := fmt.Fprintf(sess.conn, "%s\r\n", mailBody)
	require.NoError(s.T(), err)
	sess.expect("250")

	// The reply lands in the inquiry's legacy blob behind a marker
	var appended bool
	for i := 0; i < 20; i++ {
		inq, err := s.inquiryRepo.GetByID(context.Background(), 1)
		require.NoError(s.T(), err)
		if strings.Contains(inq.LegacyBody, "--- New Message [") &&
			strings.Contains(inq.LegacyBody, "Is the corner unit still free?") {
			appended = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	assert.True(s.T(), appended, "reply was not appended to the legacy blob")
}

func (s *SMTPIntegrationTestSuite) TestUnknownInquiryRejected() {
	sess := s.dial()
	defer sess.close()

	sess.send("HELO tenant.example.com")
	sess.send("MAIL FROM:<tenant@example.com>")

	resp := sess.send(fmt.Sprintf("RCPT TO:<inquiry-999@%s>", testMailDomain))
	assert.True(s.T(), strings.HasPrefix(resp, "550"), resp)
}

func (s *SMTPIntegrationTestSuite) TestClosedInquiryRejected() {
	s.seedInquiry(fixtures.NewInquiryBuilder().WithStatus(models.InquiryStatusClosed).Build())

	sess := s.dial()
	defer sess.close()

	sess.send("HELO tenant.example.com")
	sess.send("MAIL FROM:<tenant@example.com>")

	resp := sess.send(fmt.Sprintf("RCPT TO:<inquiry-1@%s>", testMailDomain))
	assert.True(s.T(), strings.HasPrefix(resp, "550"), resp)
}

func (s *SMTPIntegrationTestSuite) TestNonInquiryAddressRejected() {
	sess := s.dial()
	defer sess.close()

	sess.send("HELO tenant.example.com")
	sess.send("MAIL FROM:<tenant@example.com>")

	resp := sess.send(fmt.Sprintf("RCPT TO:<info@%s>", testMailDomain))
	assert.True(s.T(), strings.HasPrefix(resp, "550"), resp)
}

func (s *SMTPIntegrationTestSuite) TestWrongDomainRejected() {
	s.seedInquiry(fixtures.NewInquiryBuilder().Build())

	sess := s.dial()
	defer sess.close()

	sess.send("HELO tenant.example.com")
	sess.send("MAIL FROM:<tenant@example.com>")

	resp := sess.send("RCPT TO:<inquiry-1@other-domain.test>")
	assert.True(s.T(), strings.HasPrefix(resp, "550"), resp)
}
