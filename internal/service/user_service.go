package service

import (
	"context"
	"log/slog"
	"strings"

	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/observability"
	"foodgram/internal/repository"
	"foodgram/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// defaultRecipesLimit is the number of recent recipes embedded per author
// when none is configured.
const defaultRecipesLimit = 3

type UserService struct {
	users        repository.UserRepository
	relations    repository.RelationRepository
	authors      authorProjector
	recipesLimit int
}

type SignupInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

type ChangePasswordInput struct {
	UserID          uint
	CurrentPassword string
	NewPassword     string
}

// NewUserService returns a new UserService. recipesLimit is the default number
// of recent recipes embedded per author in subscription listings.
func NewUserService(
	users repository.UserRepository,
	recipes repository.RecipeRepository,
	relations repository.RelationRepository,
	recipesLimit int,
) *UserService {
	if recipesLimit <= 0 {
		recipesLimit = defaultRecipesLimit
	}
	return &UserService{
		users:        users,
		relations:    relations,
		authors:      authorProjector{recipes: recipes, relations: relations},
		recipesLimit: recipesLimit,
	}
}

func validationErr(err error) error {
	if err == nil {
		return nil
	}
	return models.NewValidationError(err.Error())
}

// Signup registers a new user with a bcrypt-hashed password.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.UserView, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, validationErr(err)
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, validationErr(err)
	}
	if err := validation.ValidatePersonName("first_name", in.FirstName); err != nil {
		return nil, validationErr(err)
	}
	if err := validation.ValidatePersonName("last_name", in.LastName); err != nil {
		return nil, validationErr(err)
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, validationErr(err)
	}

	if existing, err := s.users.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("user with this email already exists")
	}
	if existing, err := s.users.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("user with this username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Email:     in.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user registered", slog.Uint64("user_id", uint64(user.ID)))
	view := models.ViewOfUser(user)
	return &view, nil
}

// Authenticate checks credentials and returns the user. Unknown email and
// wrong password produce the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, models.NewUnauthorizedError("invalid email or password")
	}
	return user, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *UserService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
		return models.NewValidationError("current password is incorrect")
	}
	if err := validation.ValidatePassword(in.NewPassword); err != nil {
		return validationErr(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.users.UpdatePassword(ctx, in.UserID, string(hash))
}

// GetProfile returns user id as seen by viewerID (0 for anonymous).
func (s *UserService) GetProfile(ctx context.Context, viewerID, id uint) (*models.UserView, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := models.ViewOfUser(user)
	if viewerID != 0 && viewerID != id {
		view.IsSubscribed, err = s.relations.Exists(ctx, models.RelationSubscription, viewerID, id)
		if err != nil {
			return nil, err
		}
	}
	return &view, nil
}

// List returns one page of users with is_subscribed filled for viewerID.
func (s *UserService) List(ctx context.Context, viewerID uint, page, limit int) (*models.Page[models.UserView], error) {
	users, total, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	following, err := s.relations.TargetIDs(ctx, models.RelationSubscription, viewerID, ids)
	if err != nil {
		return nil, err
	}
	views := make([]models.UserView, 0, len(users))
	for i := range users {
		v := models.ViewOfUser(&users[i])
		v.IsSubscribed = following[v.ID]
		views = append(views, v)
	}
	return &models.Page[models.UserView]{Count: total, Results: views}, nil
}

// ListSubscriptions returns the authors userID follows, each with up to
// recipeLimit recent recipes. recipeLimit <= 0 uses the service default.
func (s *UserService) ListSubscriptions(ctx context.Context, userID uint, recipeLimit, page, limit int) (result *models.Page[models.UserWithRecipes], err error) {
	ctx, span := observability.StartSpan(ctx, "service", "ListSubscriptions")
	defer func() { observability.EndSpan(span, err) }()

	if recipeLimit <= 0 {
		recipeLimit = s.recipesLimit
	}
	authors, total, err := s.users.ListFollowed(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	views, err := s.authors.project(ctx, userID, authors, recipeLimit)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.UserWithRecipes]{Count: total, Results: views}, nil
}
