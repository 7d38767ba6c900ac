package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/restaurant-site/models"
	"gorm.io/gorm"
)

const MaxReviewPhotos = 5

var (
	ErrInvalidRating    = errors.New("please select a rating between 1 and 5")
	ErrCommentRequired  = errors.New("please write a comment")
	ErrTooManyPhotos    = fmt.Errorf("a review can have at most %d photos", MaxReviewPhotos)
	ErrForeignPhoto     = errors.New("review photos must be uploaded through the review photo upload")
	ErrNoOrders         = errors.New("only customers with an order can leave a review")
	ErrOrderNotOwned    = errors.New("order does not belong to this customer")
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrNotReviewAuthor  = errors.New("only the author can delete this review")
)

type ReviewInput struct {
	Rating     int      `json:"rating"`
	Comment    string   `json:"comment"`
	OrderID    *uint    `json:"order_id"`
	MenuItemID *uint    `json:"menu_item_id"`
	Photos     []string `json:"photos"`
}

// ValidateReview checks the submission before anything touches the database.
func ValidateReview(in ReviewInput) error {
	if in.Rating < 1 || in.Rating > 5 {
		return ErrInvalidRating
	}
	if strings.TrimSpace(in.Comment) == "" {
		return ErrCommentRequired
	}
	if len(in.Photos) > MaxReviewPhotos {
		return ErrTooManyPhotos
	}
	return nil
}

type ReviewStats struct {
	Count         int64         `json:"count"`
	AverageRating float64       `json:"average_rating"`
	Distribution  map[int]int64 `json:"distribution"`
}

type ReviewService struct {
	db      *gorm.DB
	storage *ObjectStorage
}

func NewReviewService(db *gorm.DB, storage *ObjectStorage) *ReviewService {
	return &ReviewService{db: db, storage: storage}
}

// checkPhotos accepts only objects the author uploaded to the review bucket.
func (s *ReviewService) checkPhotos(userID uint, photos []string) error {
	own := s.storage.PublicURL(BucketReviewPhotos, fmt.Sprintf("%d/", userID))
	for _, p := range photos {
		rest := strings.TrimPrefix(p, own)
		if rest == p || rest == "" || strings.ContainsAny(rest, "/\\?#") || strings.Contains(rest, "..") {
			return ErrForeignPhoto
		}
	}
	return nil
}

func (s *ReviewService) Submit(ctx context.Context, userID uint, in ReviewInput) (*models.Review, error) {
	if err := ValidateReview(in); err != nil {
		return nil, err
	}
	if err := s.checkPhotos(userID, in.Photos); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var orders int64
	if err := db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&orders).Error; err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	if orders == 0 {
		return nil, ErrNoOrders
	}

	if in.OrderID != nil {
		var owned int64
		if err := db.Model(&models.Order{}).Where("id = ? AND user_id = ?", *in.OrderID, userID).Count(&owned).Error; err != nil {
			return nil, fmt.Errorf("check order: %w", err)
		}
		if owned == 0 {
			return nil, ErrOrderNotOwned
		}
	}
	if in.MenuItemID != nil {
		var exists int64
		if err := db.Model(&models.MenuItem{}).Where("id = ?", *in.MenuItemID).Count(&exists).Error; err != nil {
			return nil, fmt.Errorf("check menu item: %w", err)
		}
		if exists == 0 {
			return nil, ErrMenuItemNotFound
		}
	}

	photos := in.Photos
	if photos == nil {
		photos = []string{}
	}
	review := models.Review{
		UserID:     userID,
		OrderID:    in.OrderID,
		MenuItemID: in.MenuItemID,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
		Photos:     photos,
		IsApproved: false,
	}
	if err := db.Create(&review).Error; err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return &review, nil
}

// ListPublic returns approved reviews only, newest first.
func (s *ReviewService) ListPublic(ctx context.Context, menuItemID *uint, limit int) ([]models.Review, error) {
	q := s.db.WithContext(ctx).Where("is_approved = ?", true)
	if menuItemID != nil {
		q = q.Where("menu_item_id = ?", *menuItemID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var reviews []models.Review
	if err := q.Order("created_at desc").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, s.Enrich(ctx, reviews)
}

func (s *ReviewService) ListByUser(ctx context.Context, userID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}
	return reviews, s.Enrich(ctx, reviews)
}

// ListAll feeds the moderation queue; approved filters when non-nil.
func (s *ReviewService) ListAll(ctx context.Context, approved *bool) ([]models.Review, error) {
	q := s.db.WithContext(ctx)
	if approved != nil {
		q = q.Where("is_approved = ?", *approved)
	}
	var reviews []models.Review
	if err := q.Order("created_at desc").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, s.Enrich(ctx, reviews)
}

// Enrich fills author and menu item names with one batch query each.
func (s *ReviewService) Enrich(ctx context.Context, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	userIDs := make([]uint, 0, len(reviews))
	itemIDs := make([]uint, 0, len(reviews))
	for _, r := range reviews {
		userIDs = append(userIDs, r.UserID)
		if r.MenuItemID != nil {
			itemIDs = append(itemIDs, *r.MenuItemID)
		}
	}

	var profiles []models.Profile
	if err := s.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return fmt.Errorf("load review authors: %w", err)
	}
	names := make(map[uint]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.FullName
	}

	items := make(map[uint]string)
	if len(itemIDs) > 0 {
		var menuItems []models.MenuItem
		if err := s.db.WithContext(ctx).Select("id", "name").Where("id IN ?", itemIDs).Find(&menuItems).Error; err != nil {
			return fmt.Errorf("load review menu items: %w", err)
		}
		for _, m := range menuItems {
			items[m.ID] = m.Name
		}
	}

	for i := range reviews {
		reviews[i].AuthorName = names[reviews[i].UserID]
		if reviews[i].AuthorName == "" {
			reviews[i].AuthorName = "Anonymous"
		}
		if reviews[i].MenuItemID != nil {
			reviews[i].MenuItemName = items[*reviews[i].MenuItemID]
		}
	}
	return nil
}

// Delete removes the review permanently; only its author may do so.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID uint) error {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("load review: %w", err)
	}
	if review.UserID != userID {
		return ErrNotReviewAuthor
	}
	if err := s.db.WithContext(ctx).Delete(&review).Error; err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	for _, photo := range review.Photos {
		s.storage.Remove(photo)
	}
	return nil
}

func (s *ReviewService) find(ctx context.Context, reviewID uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("load review: %w", err)
	}
	return &review, nil
}

func (s *ReviewService) SetApproved(ctx context.Context, reviewID uint, approved bool) (*models.Review, error) {
	review, err := s.find(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(review).Update("is_approved", approved).Error; err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

func (s *ReviewService) Respond(ctx context.Context, reviewID uint, response string) (*models.Review, error) {
	review, err := s.find(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(review).Update("admin_response", strings.TrimSpace(response)).Error; err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

// Stats aggregates approved reviews only.
func (s *ReviewService) Stats(ctx context.Context) (ReviewStats, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("rating, COUNT(*) as count").
		Where("is_approved = ?", true).
		Group("rating").
		Scan(&rows).Error; err != nil {
		return ReviewStats{}, fmt.Errorf("review stats: %w", err)
	}

	stats := ReviewStats{Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	var sum int64
	for _, r := range rows {
		stats.Distribution[r.Rating] = r.Count
		stats.Count += r.Count
		sum += int64(r.Rating) * r.Count
	}
	if stats.Count > 0 {
		stats.AverageRating = float64(int(float64(sum)/float64(stats.Count)*10+0.5)) / 10
	}
	return stats, nil
}
