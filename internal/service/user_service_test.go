package service

import (
	"testing"
	"time"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/repository/interfaces"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository 是 UserRepository 的模拟实现
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(id int) (*model.User, error) {
	args := m.Called(id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) FindByVerificationToken(userID int, tokenHash string, now time.Time) (*model.User, error) {
	args := m.Called(userID, tokenHash, now)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) FindByResetToken(tokenHash string, now time.Time) (*model.User, error) {
	args := m.Called(tokenHash, now)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateAvatar(userID int, avatarURL string) error {
	args := m.Called(userID, avatarURL)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRole(userID int, role string) error {
	args := m.Called(userID, role)
	return args.Error(0)
}

func (m *MockUserRepository) SetVerificationToken(userID int, tokenHash string, expire time.Time) error {
	args := m.Called(userID, tokenHash, expire)
	return args.Error(0)
}

func (m *MockUserRepository) MarkEmailVerified(userID int) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) SetResetToken(userID int, tokenHash string, expire time.Time) error {
	args := m.Called(userID, tokenHash, expire)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(userID int, plainPassword string, changedAt time.Time) error {
	args := m.Called(userID, plainPassword, changedAt)
	return args.Error(0)
}

func (m *MockUserRepository) Count() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) FindAll(page, pageSize int) ([]*model.User, error) {
	args := m.Called(page, pageSize)
	users, _ := args.Get(0).([]*model.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) CreateAddress(address *model.Address) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateAddress(address *model.Address) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteAddress(id, userID int) error {
	args := m.Called(id, userID)
	return args.Error(0)
}

func (m *MockUserRepository) GetAddressByID(id int) (*model.Address, error) {
	args := m.Called(id)
	address, _ := args.Get(0).(*model.Address)
	return address, args.Error(1)
}

func (m *MockUserRepository) ListUserAddresses(userID int) ([]*model.Address, error) {
	args := m.Called(userID)
	addresses, _ := args.Get(0).([]*model.Address)
	return addresses, args.Error(1)
}

func (m *MockUserRepository) SetDefaultAddress(userID, addressID int) error {
	args := m.Called(userID, addressID)
	return args.Error(0)
}

var _ interfaces.UserRepository = (*MockUserRepository)(nil)

// MockEmailSender 是 EmailSenderInterface 的模拟实现
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendOTPEmail(to, name, otp string) error {
	args := m.Called(to, name, otp)
	return args.Error(0)
}

func (m *MockEmailSender) SendPasswordResetEmail(to, name, resetToken string) error {
	args := m.Called(to, name, resetToken)
	return args.Error(0)
}

func (m *MockEmailSender) SendOrderConfirmation(to, name string, order *model.Order) error {
	args := m.Called(to, name, order)
	return args.Error(0)
}

var _ EmailSenderInterface = (*MockEmailSender)(nil)

func newTestUserService(repo *MockUserRepository, email *MockEmailSender) *UserService {
	tokens := util.NewTokenManager("test-secret", time.Hour)
	return NewUserService(repo, email, tokens, nil)
}

func hashFor(password string) string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(hash)
}

func init() {
	util.InitLogger("error")
}

// TestRegisterSuccess 注册成功应落库、发信并返回会话令牌
func TestRegisterSuccess(t *testing.T) {
	repo := new(MockUserRepository)
	email := new(MockEmailSender)
	svc := newTestUserService(repo, email)

	repo.On("Create", mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*model.User).ID = 7
	}).Return(nil)
	repo.On("SetVerificationToken", 7, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)
	email.On("SendOTPEmail", "rahim@example.com", "Rahim", mock.AnythingOfType("string")).Return(nil)

	user, token, err := svc.Register("Rahim", "  Rahim@Example.COM ", "secret123", "01700000000")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 7, user.ID)
	// 邮箱应被规整为小写
	assert.Equal(t, "rahim@example.com", user.Email)
	assert.Equal(t, model.RoleCustomer, user.Role)

	repo.AssertExpectations(t)
	email.AssertExpectations(t)
}

// TestRegisterDuplicateEmail 重复邮箱应返回冲突错误
func TestRegisterDuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	email := new(MockEmailSender)
	svc := newTestUserService(repo, email)

	repo.On("Create", mock.AnythingOfType("*model.User")).
		Return(apperrors.New(apperrors.ErrUserExists, "User already exists"))

	_, _, err := svc.Register("Rahim", "rahim@example.com", "secret123", "")
	assert.True(t, apperrors.Is(err, apperrors.ErrUserExists))
	email.AssertNotCalled(t, "SendOTPEmail")
}

// TestRegisterEmailDeliveryFailure 验证码入库后投递失败应返回投递错误
func TestRegisterEmailDeliveryFailure(t *testing.T) {
	repo := new(MockUserRepository)
	email := new(MockEmailSender)
	svc := newTestUserService(repo, email)

	repo.On("Create", mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*model.User).ID = 7
	}).Return(nil)
	repo.On("SetVerificationToken", 7, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)
	email.On("SendOTPEmail", mock.Anything, mock.Anything, mock.Anything).
		Return(apperrors.New(apperrors.ErrEmailDelivery, "Failed to send email"))

	_, _, err := svc.Register("Rahim", "rahim@example.com", "secret123", "")
	assert.True(t, apperrors.Is(err, apperrors.ErrEmailDelivery))
	// 验证码已写入，用户仍可走重发流程
	repo.AssertCalled(t, "SetVerificationToken", 7, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time"))
}

// TestLoginSuccess 正确凭证应返回用户与令牌
func TestLoginSuccess(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo, new(MockEmailSender))

	repo.On("FindByEmail", "rahim@example.com").Return(&model.User{
		ID:           7,
		Email:        "rahim@example.com",
		PasswordHash: hashFor("secret123"),
	}, nil)

	user, token, err := svc.Login("rahim@example.com", "secret123")
	assert.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.NotEmpty(t, token)
}

// TestLoginAmbiguousFailure 用户不存在与密码错误应返回同一文案
func TestLoginAmbiguousFailure(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo, new(MockEmailSender))

	repo.On("FindByEmail", "nobody@example.com").Return(nil, nil)
	repo.On("FindByEmail", "rahim@example.com").Return(&model.User{
		ID:           7,
		PasswordHash: hashFor("secret123"),
	}, nil)

	_, _, errUnknown := svc.Login("nobody@example.com", "whatever")
	_, _, errWrongPass := svc.Login("rahim@example.com", "wrong-password")

	assert.True(t, apperrors.Is(errUnknown, apperrors.ErrInvalidCredentials))
	assert.True(t, apperrors.Is(errWrongPass, apperrors.ErrInvalidCredentials))
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
}

// TestVerifyEmailSuccess 正确验证码应置位验证标记
func TestVerifyEmailSuccess(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo, new(MockEmailSender))

	repo.On("FindByVerificationToken", 7, util.HashToken("123456"), mock.AnythingOfType("time.Time")).
		Return(&model.User{ID: 7}, nil)
	repo.On("MarkEmailVerified", 7).Return(nil)

	user, err := svc.VerifyEmail(7, "123456")
	assert.NoError(t, err)
	assert.True(t, user.IsEmailVerified)
	repo.AssertExpectations(t)
}

// TestVerifyEmailInvalidOTP 错码与过期应返回同一模糊文案
func TestVerifyEmailInvalidOTP(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo, new(MockEmailSender))

	repo.On("FindByVerificationToken", 7, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(nil, nil)

	_, err := svc.VerifyEmail(7, "000000")
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidOTP))
	assert.Contains(t, err.Error(), "Invalid or expired OTP")
	repo.AssertNotCalled(t, "MarkEmailVerified", mock.Anything)
}

// TestResendOTPAlreadyVerified 已验证用户不应重发验证码
func TestResendOTPAlreadyVerified(t *testing.T) {
	repo := new(MockUserRepository)
	email := new(MockEmailSender)
	svc := newTestUserService(repo, email)

	repo.On("FindByID", 7).Return(&model.User{ID: 7, IsEmailVerified: true}, nil)

	err := svc.ResendOTP(7)
	assert.True(t, apperrors.Is(err, apperrors.ErrAlreadyVerified))
	email.AssertNotCalled(t, "SendOTPEmail")
}

// TestForgotPasswordUnknownEmail 未注册邮箱应返回 404
func TestForgotPasswordUnknownEmail(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo, new(MockEmailSender))

	repo.On("FindByEmail", "nobody@example.com").Return(nil, nil)

	err := svc.ForgotPassword("nobody@example.com")
	assert.True(t, apperrors.Is(err, apperrors.ErrUserNotFound))
}

// TestForgotPasswordSuccess 库中应只存令牌摘要，明文只进邮件
func TestForgotPasswordSuccess(t *testing.T) {
	repo := new(MockUserRepository)
	email := new(MockEmailSender)
	svc := newTestUserService(repo, email)

	repo.On("FindByEmail", "rahim@example.com").Return(&model.User{
		ID: 7, Name: "Rahim", Email: "rahim@example.com",
	}, nil)

	var storedHash, mailedToken string
	repo.On("SetResetToken", 7, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) { storedHash = args.String(1) }).Return(nil)
	email.On("SendPasswordResetEmail", "rahim@example.com", "Rahim", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { mailedToken = args.String(2) }).Return(nil)

	err := svc.ForgotPassword("rahim@example.com")
	assert.NoError(t, err)
	assert.NotEqual(t, mailedToken, storedHash)
	assert.Equal(t, util.HashToken(mailedToken), storedHash)
}

// TestResetPasswordInvalidToken 无效或过期令牌应返回同一模糊文案
func TestResetPasswordInvalidToken(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo, new(MockEmailSender))

	repo.On("FindByResetToken", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(nil, nil)

	_, err := svc.ResetPassword("bogus-token", "newsecret")
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidResetToken))
	assert.Contains(t, err.Error(), "Invalid or expired reset token")
	repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

// TestResetPasswordSuccess 成功重置应改密并返回新会话令牌
func TestResetPasswordSuccess(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo, new(MockEmailSender))

	token, _ := util.GenerateResetToken()
	repo.On("FindByResetToken", util.HashToken(token), mock.AnythingOfType("time.Time")).
		Return(&model.User{ID: 7}, nil)
	repo.On("UpdatePassword", 7, "newsecret", mock.AnythingOfType("time.Time")).Return(nil)

	sessionToken, err := svc.ResetPassword(token, "newsecret")
	assert.NoError(t, err)
	assert.NotEmpty(t, sessionToken)
	repo.AssertExpectations(t)
}

// TestResetPasswordFreshTokenOutlivesCutoff 重置返回的新令牌不能被改密时间门槛拒掉：
// DATETIME 入库会把纳秒四舍五入，带小数秒的改密时间可能进位到下一秒，反超新令牌的 iat
func TestResetPasswordFreshTokenOutlivesCutoff(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo, new(MockEmailSender))

	token, _ := util.GenerateResetToken()
	var changedAt time.Time
	repo.On("FindByResetToken", util.HashToken(token), mock.AnythingOfType("time.Time")).
		Return(&model.User{ID: 7}, nil)
	repo.On("UpdatePassword", 7, "newsecret", mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			changedAt = args.Get(2).(time.Time)
		}).Return(nil)

	sessionToken, err := svc.ResetPassword(token, "newsecret")
	assert.NoError(t, err)

	// 改密时间必须是整秒，入库四舍五入后值不变
	assert.Zero(t, changedAt.Nanosecond())

	tokens := util.NewTokenManager("test-secret", time.Hour)
	claims, err := tokens.ValidateToken(sessionToken)
	assert.NoError(t, err)
	stored := changedAt.Round(time.Second)
	assert.False(t, claims.IssuedAt.Before(stored), "新签发令牌的 iat 不应早于落库的改密时间")
}
