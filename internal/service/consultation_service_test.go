// internal/service/consultation_service_test.go
package service

import (
	"context"
	"testing"

	"astrochat/internal/domain"
	"astrochat/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newConsultationServiceForTest(
	consultationRepo *MockConsultationRepository,
	messageRepo *MockMessageRepository,
	userRepo *MockUserRepository,
	controller *MockTxController,
) ConsultationService {
	beginTx, commitTx, rollbackTx := newTxFuncs(controller, nil)
	return NewConsultationService(nil, new(MockDBExecutor), consultationRepo, messageRepo, userRepo, beginTx, commitTx, rollbackTx)
}

func TestRequestConsultationSnapshotsRate(t *testing.T) {
	consultationRepo := new(MockConsultationRepository)
	userRepo := new(MockUserRepository)
	controller := new(MockTxController)

	userRepo.On("GetAstrologerRate", mock.Anything, controller, int64(2)).Return(decimal.NewFromInt(10), nil)
	consultationRepo.On("CreateConsultation", mock.Anything, controller, mock.MatchedBy(func(c *domain.Consultation) bool {
		return c.SeekerID == 1 && c.AstrologerID == 2 &&
			c.Status == domain.ConsultationStatusRequested &&
			c.RatePerMin.Equal(decimal.NewFromInt(10))
	})).Return(nil)
	controller.On("Commit").Return(nil)
	controller.On("Rollback").Return(nil)

	svc := newConsultationServiceForTest(consultationRepo, new(MockMessageRepository), userRepo, controller)

	consultation, err := svc.RequestConsultation(context.Background(), 1, 2, domain.ConsultationTypeChat)

	assert.NoError(t, err)
	assert.Equal(t, domain.ConsultationStatusRequested, consultation.Status)
	assert.True(t, consultation.RatePerMin.Equal(decimal.NewFromInt(10)))
	consultationRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestRequestConsultationUnknownAstrologer(t *testing.T) {
	userRepo := new(MockUserRepository)
	controller := new(MockTxController)

	userRepo.On("GetAstrologerRate", mock.Anything, controller, int64(9)).Return(decimal.Zero, util.ErrNotFound)
	controller.On("Rollback").Return(nil)

	svc := newConsultationServiceForTest(new(MockConsultationRepository), new(MockMessageRepository), userRepo, controller)

	_, err := svc.RequestConsultation(context.Background(), 1, 9, domain.ConsultationTypeChat)

	assert.True(t, util.IsError(err, util.ErrUserNotFound))
}

func TestGetConsultationForbiddenForOutsiders(t *testing.T) {
	consultationRepo := new(MockConsultationRepository)
	consultationRepo.On("GetConsultationByID", mock.Anything, mock.Anything, int64(7)).
		Return(&domain.Consultation{ID: 7, SeekerID: 1, AstrologerID: 2}, nil)

	svc := newConsultationServiceForTest(consultationRepo, new(MockMessageRepository), new(MockUserRepository), new(MockTxController))

	_, err := svc.GetConsultation(context.Background(), 3, 7)

	assert.True(t, util.IsError(err, util.ErrForbidden))
}

func TestMessagesRequireParticipation(t *testing.T) {
	consultationRepo := new(MockConsultationRepository)
	messageRepo := new(MockMessageRepository)
	consultationRepo.On("GetConsultationByID", mock.Anything, mock.Anything, int64(7)).
		Return(&domain.Consultation{ID: 7, SeekerID: 1, AstrologerID: 2}, nil)

	svc := newConsultationServiceForTest(consultationRepo, messageRepo, new(MockUserRepository), new(MockTxController))

	_, err := svc.Messages(context.Background(), 3, 7)

	assert.True(t, util.IsError(err, util.ErrForbidden))
	messageRepo.AssertNotCalled(t, "GetMessagesByConsultationID", mock.Anything, mock.Anything, mock.Anything)
}

func TestMessagesForParticipant(t *testing.T) {
	consultationRepo := new(MockConsultationRepository)
	messageRepo := new(MockMessageRepository)
	consultationRepo.On("GetConsultationByID", mock.Anything, mock.Anything, int64(7)).
		Return(&domain.Consultation{ID: 7, SeekerID: 1, AstrologerID: 2}, nil)
	messageRepo.On("GetMessagesByConsultationID", mock.Anything, mock.Anything, int64(7)).
		Return([]domain.ChatMessage{{ID: 1, ConsultationID: 7, SenderID: 1, Content: "hi"}}, nil)

	svc := newConsultationServiceForTest(consultationRepo, messageRepo, new(MockUserRepository), new(MockTxController))

	messages, err := svc.Messages(context.Background(), 1, 7)

	assert.NoError(t, err)
	assert.Len(t, messages, 1)
	assert.Equal(t, "hi", messages[0].Content)
}
