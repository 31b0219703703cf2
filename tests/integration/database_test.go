//go:build integration

package integration

import (
	"context"
	"fmt"
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

	"github.com/rumahkita/rumahkita-backend/internal/models"
	"github.com/rumahkita/rumahkita-backend/internal/repository"
	"github.com/rumahkita/rumahkita-backend/tests/fixtures"
)

// DatabaseIntegrationTestSuite tests repository behavior with real PostgreSQL
type DatabaseIntegrationTestSuite struct {
	suite.Suite
	container      testcontainers.Container
	db             *gorm.DB
	inquiryRepo    repository.InquiryRepository
	attachmentRepo repository.AttachmentRepository
	propertyRepo   repository.PropertyRepository
}

// SetupSuite starts PostgreSQL container and initializes database
func (s *DatabaseIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "rumahkita_test",
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

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=rumahkita_test sslmode=disable",
		host, port.Port())

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)
	s.db = db

	err = db.AutoMigrate(&models.Property{}, &models.Unit{}, &models.Inquiry{}, &models.Message{}, &models.Attachment{})
	require.NoError(s.T(), err)

	s.inquiryRepo = repository.NewInquiryRepository(db)
	s.attachmentRepo = repository.NewAttachmentRepository(db, nil)
	s.propertyRepo = repository.NewPropertyRepository(db)
}

// TearDownSuite stops the PostgreSQL container
func (s *DatabaseIntegrationTestSuite) TearDownSuite() {
	if s.container != nil {
		s.container.Terminate(context.Background())
	}
}

// SetupTest cleans up data before each test
func (s *DatabaseIntegrationTestSuite) SetupTest() {
	s.db.Exec("TRUNCATE TABLE attachments, messages, inquiries, units, properties RESTART IDENTITY CASCADE")
}

func TestDatabaseIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(DatabaseIntegrationTestSuite))
}

func (s *DatabaseIntegrationTestSuite) seedInquiry(inq *models.Inquiry) {
	require.NoError(s.T(), s.db.Create(fixtures.NewPropertyBuilder().
		WithID(inq.PropertyID).
		WithManagerID(inq.ManagerID).
		Build()).Error)
	require.NoError(s.T(), s.db.Create(inq).Error)
}

func (s *DatabaseIntegrationTestSuite) TestAppendMessage_BumpsInquiryUpdatedAt() {
	inq := fixtures.NewInquiryBuilder().Build()
	s.seedInquiry(inq)

	sentAt := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	err := s.inquiryRepo.AppendMessage(context.Background(), &models.Message{
		InquiryID: inq.ID,
		SenderID:  inq.TenantID,
		Sender:    models.SenderTenant,
		Body:      "Any update?",
		CreatedAt: sentAt,
	})
	require.NoError(s.T(), err)

	reloaded, err := s.inquiryRepo.GetByID(context.Background(), inq.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), reloaded.Messages, 1)
	assert.Equal(s.T(), "Any update?", reloaded.Messages[0].Body)
	assert.WithinDuration(s.T(), sentAt, reloaded.UpdatedAt, time.Second)
}

func (s *DatabaseIntegrationTestSuite) TestAppendLegacyText_AppendsMarkerDelimitedEntry() {
	inq := fixtures.NewInquiryBuilder().WithLegacyBody("First message").Build()
	s.seedInquiry(inq)

	at := time.UnixMilli(1700000000000)
	err := s.inquiryRepo.AppendLegacyText(context.Background(), inq.ID, "Second message", at)
	require.NoError(s.T(), err)

	reloaded, err := s.inquiryRepo.GetByID(context.Background(), inq.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "First message\n\n--- New Message [1700000000000] ---\nSecond message", reloaded.LegacyBody)
}

func (s *DatabaseIntegrationTestSuite) TestGetByID_OrdersMessagesByCreation() {
	inq := fixtures.NewInquiryBuilder().Build()
	s.seedInquiry(inq)

	base := time.Now().Truncate(time.Second)
	for i, body := range []string{"third", "first", "second"} {
		offset := []time.Duration{2 * time.Minute, 0, time.Minute}[i]
		require.NoError(s.T(), s.db.Create(&models.Message{
			InquiryID: inq.ID,
			SenderID:  inq.TenantID,
			Sender:    models.SenderTenant,
			Body:      body,
			CreatedAt: base.Add(offset),
		}).Error)
	}

	reloaded, err := s.inquiryRepo.GetByID(context.Background(), inq.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), reloaded.Messages, 3)
	assert.Equal(s.T(), "first", reloaded.Messages[0].Body)
	assert.Equal(s.T(), "second", reloaded.Messages[1].Body)
	assert.Equal(s.T(), "third", reloaded.Messages[2].Body)
}

func (s *DatabaseIntegrationTestSuite) TestAssignUnit_RejectsOccupiedUnit() {
	property := fixtures.NewPropertyBuilder().
		WithUnits(
			fixtures.NewUnitBuilder().WithID(1).WithLabel("A-1").BuildValue(),
			fixtures.NewUnitBuilder().WithID(2).WithLabel("A-2").Occupied(55).BuildValue(),
		).Build()
	require.NoError(s.T(), s.db.Create(property).Error)

	err := s.propertyRepo.AssignUnit(context.Background(), 1, 100)
	require.NoError(s.T(), err)

	err = s.propertyRepo.AssignUnit(context.Background(), 2, 100)
	assert.ErrorIs(s.T(), err, repository.ErrInvalidInput)
}

func (s *DatabaseIntegrationTestSuite) TestAssignUnit_IdempotentForSameTenant() {
	property := fixtures.NewPropertyBuilder().
		WithUnits(fixtures.NewUnitBuilder().WithID(1).BuildValue()).
		Build()
	require.NoError(s.T(), s.db.Create(property).Error)

	require.NoError(s.T(), s.propertyRepo.AssignUnit(context.Background(), 1, 100))
	require.NoError(s.T(), s.propertyRepo.AssignUnit(context.Background(), 1, 100))

	var unit models.Unit
	require.NoError(s.T(), s.db.First(&unit, 1).Error)
	assert.True(s.T(), unit.IsOccupied)
	require.NotNil(s.T(), unit.TenantID)
	assert.Equal(s.T(), uint(100), *unit.TenantID)
}

func (s *DatabaseIntegrationTestSuite) TestAttachments_CreateBatchAndList() {
	inq := fixtures.NewInquiryBuilder().Build()
	s.seedInquiry(inq)

	base := time.Now().Truncate(time.Second)
	err := s.attachmentRepo.CreateBatch(context.Background(), []models.Attachment{
		fixtures.NewAttachmentBuilder().WithID(0).WithInquiryID(inq.ID).WithFileName("a.jpg").WithCreatedAt(base).BuildValue(),
		fixtures.NewAttachmentBuilder().WithID(0).WithInquiryID(inq.ID).WithFileName("b.jpg").WithCreatedAt(base.Add(time.Second)).BuildValue(),
	})
	require.NoError(s.T(), err)

	attachments, err := s.attachmentRepo.ListByInquiry(context.Background(), inq.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), attachments, 2)
	assert.Equal(s.T(), "a.jpg", attachments[0].FileName)
}

func (s *DatabaseIntegrationTestSuite) TestDeleteInquiry_CascadesToMessagesAndAttachments() {
	inq := fixtures.NewInquiryBuilder().Build()
	s.seedInquiry(inq)

	require.NoError(s.T(), s.db.Create(fixtures.NewMessageBuilder().WithID(0).WithInquiryID(inq.ID).Build()).Error)
	require.NoError(s.T(), s.db.Create(fixtures.NewAttachmentBuilder().WithID(0).WithInquiryID(inq.ID).Build()).Error)

	require.NoError(s.T(), s.db.Delete(&models.Inquiry{}, inq.ID).Error)

	var messages, attachments int64
	s.db.Model(&models.Message{}).Where("inquiry_id = ?", inq.ID).Count(&messages)
	s.db.Model(&models.Attachment{}).Where("inquiry_id = ?", inq.ID).Count(&attachments)
	assert.Zero(s.T(), messages)
	assert.Zero(s.T(), attachments)
}
