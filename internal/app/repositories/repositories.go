package repositories

import (
	"context"
	"time"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/db"
)

// IPostRepository defines the post-related database operations
type IPostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	// GetByIDForUpdate locks the post row until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Post, error)
	// Update persists the post if its version is unchanged and increments the version
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.Post, error)
	ListByOwner(ctx context.Context, userID int64) ([]*models.Post, error)
	ListByParticipant(ctx context.Context, userID int64) ([]*models.Post, error)
}

// IParticipantRepository defines the participant-related database operations
type IParticipantRepository interface {
	ListByPost(ctx context.Context, postID int64) ([]*models.Participant, error)
	ListByPosts(ctx context.Context, postIDs []int64) (map[int64][]*models.Participant, error)
	Insert(ctx context.Context, participant *models.Participant) error
	Update(ctx context.Context, participant *models.Participant) error
	Delete(ctx context.Context, postID, userID int64) error
}

// IReportRepository defines the report-related database operations
type IReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id int64) (*models.Report, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Report, error)
	List(ctx context.Context, resolution models.ReportResolution) ([]*models.Report, error)
	Update(ctx context.Context, report *models.Report) error
	// ResolveOpenByPost resolves every open report of postID and returns how many changed
	ResolveOpenByPost(ctx context.Context, postID int64, resolution models.ReportResolution, resolvedBy int64, at time.Time) (int64, error)
}

// IUserRepository defines the user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, userID int64) error
	UpdateName(ctx context.Context, userID int64, firstName, lastName string) (*models.User, error)
}

// ITokenRepository defines the refresh token database operations
type ITokenRepository interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (int64, time.Time, bool, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// TxRepositories are the repositories bound to one transaction
type TxRepositories interface {
	Posts() IPostRepository
	Participants() IParticipantRepository
	Reports() IReportRepository
}

// TxManager runs fn inside a single transaction. Any error returned by fn rolls
// everything back.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

// Repositories holds all the repository instances
type Repositories struct {
	PostRepository        *PostRepository
	ParticipantRepository *ParticipantRepository
	ReportRepository      *ReportRepository
	UserRepository        *UserRepository
	TokenRepository       *TokenRepository
	TxManager             *PgTxManager
}

// NewRepositories initializes all repositories
func NewRepositories(pg *db.PostgresDB) *Repositories {
	return &Repositories{
		PostRepository:        NewPostRepository(pg.Pool),
		ParticipantRepository: NewParticipantRepository(pg.Pool),
		ReportRepository:      NewReportRepository(pg.Pool),
		UserRepository:        NewUserRepository(pg.Pool),
		TokenRepository:       NewTokenRepository(pg.Pool),
		TxManager:             NewPgTxManager(pg),
	}
}
