package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rumahkita/rumahkita-backend/internal/models"
)

// AttachmentRepositoryTestSuite is the test suite for AttachmentRepository
type AttachmentRepositoryTestSuite struct {
	suite.Suite
	db          *gorm.DB
	repo        AttachmentRepository
	testInquiry *models.Inquiry
}

// SetupSuite runs once before all tests
func (s *AttachmentRepositoryTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	db.Exec("PRAGMA foreign_keys = ON")

	err = db.AutoMigrate(&models.Property{}, &models.Unit{}, &models.Inquiry{}, &models.Message{}, &models.Attachment{})
	require.NoError(s.T(), err)

	s.db = db
	s.repo = NewAttachmentRepository(db, nil)
}

// TearDownSuite runs once after all tests
func (s *AttachmentRepositoryTestSuite) TearDownSuite() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SetupTest runs before each test
func (s *AttachmentRepositoryTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM attachments")
	s.db.Exec("DELETE FROM inquiries")
	s.db.Exec("DELETE FROM properties")

	property := &models.Property{ManagerID: 200, Name: "Griya Melati"}
	require.NoError(s.T(), s.db.Create(property).Error)

	s.testInquiry = &models.Inquiry{
		PropertyID: property.ID,
		TenantID:   100,
		ManagerID:  200,
		Status:     models.InquiryStatusActive,
	}
	require.NoError(s.T(), s.db.Create(s.testInquiry).Error)
}

// TestAttachmentRepositoryTestSuite runs the test suite
func TestAttachmentRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(AttachmentRepositoryTestSuite))
}

// ==================== Create Tests ====================

func (s *AttachmentRepositoryTestSuite) TestCreate_Success() {
	// Arrange
	att := &models.Attachment{
		InquiryID:  s.testInquiry.ID,
		FileName:   "ktp.jpg",
		FileType:   "image/jpeg",
		FileSize:   2048,
		UploadedBy: 100,
	}

	// Act
	err := s.repo.Create(context.Background(), att)

	// Assert
	assert.NoError(s.T(), err)
	assert.NotZero(s.T(), att.ID)
	assert.NotZero(s.T(), att.CreatedAt)
}

func (s *AttachmentRepositoryTestSuite) TestCreateBatch_AllOrNothing() {
	// Arrange
	batch := []models.Attachment{
		{InquiryID: s.testInquiry.ID, FileName: "a.pdf", UploadedBy: 100},
		{InquiryID: s.testInquiry.ID, FileName: "b.pdf", UploadedBy: 100},
	}

	// Act
	err := s.repo.CreateBatch(context.Background(), batch)

	// Assert
	require.NoError(s.T(), err)
	list, err := s.repo.ListByInquiry(context.Background(), s.testInquiry.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), list, 2)
}

func (s *AttachmentRepositoryTestSuite) TestCreateBatch_EmptyIsNoop() {
	assert.NoError(s.T(), s.repo.CreateBatch(context.Background(), nil))
}

// ==================== ListByInquiry Tests ====================

func (s *AttachmentRepositoryTestSuite) TestListByInquiry_OrderedByUploadTime() {
	// Arrange
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{time.Hour, 0, time.Minute} {
		att := &models.Attachment{
			InquiryID:  s.testInquiry.ID,
			FileName:   []string{"third.png", "first.png", "second.png"}[i],
			UploadedBy: 100,
			CreatedAt:  base.Add(offset),
		}
		require.NoError(s.T(), s.db.Create(att).Error)
	}

	// Act
	list, err := s.repo.ListByInquiry(context.Background(), s.testInquiry.ID)

	// Assert
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 3)
	assert.Equal(s.T(), "first.png", list[0].FileName)
	assert.Equal(s.T(), "second.png", list[1].FileName)
	assert.Equal(s.T(), "third.png", list[2].FileName)
}

func (s *AttachmentRepositoryTestSuite) TestListByInquiry_EmptyForUnknownInquiry() {
	// Act
	list, err := s.repo.ListByInquiry(context.Background(), 9999)

	// Assert
	require.NoError(s.T(), err)
	assert.Empty(s.T(), list)
}

// ==================== GetByID / Delete Tests ====================

func (s *AttachmentRepositoryTestSuite) TestGetByID_NotFound() {
	_, err := s.repo.GetByID(context.Background(), 9999)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *AttachmentRepositoryTestSuite) TestDelete_RemovesRecord() {
	// Arrange
	att := &models.Attachment{InquiryID: s.testInquiry.ID, FileName: "gone.pdf", UploadedBy: 100}
	require.NoError(s.T(), s.repo.Create(context.Background(), att))

	// Act
	err := s.repo.Delete(context.Background(), att.ID)

	// Assert
	require.NoError(s.T(), err)
	_, err = s.repo.GetByID(context.Background(), att.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *AttachmentRepositoryTestSuite) TestDelete_NotFound() {
	err := s.repo.Delete(context.Background(), 9999)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}
