package services

// tracerName is the instrumentation scope of the service spans
const tracerName = "github.com/huskybridge/marketplace/internal/app/services"

// Services holds the business services wired at startup:
//   - Auth: registration, login and refresh token rotation
//   - Users: the user directory and profile edits
//   - Posts: post CRUD, listings and the participation lifecycle
//   - Reports: anonymous reporting and admin moderation
type Services struct {
	Auth    *AuthService
	Users   UserService
	Posts   PostService
	Reports ReportService
}
