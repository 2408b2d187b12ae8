package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cueside/club-app/models"
)

// MemberService covers the membership ledger reads the terminals need:
// search-and-select before a membership settlement, and member creation
// seeded from a plan.
type MemberService struct {
	db *gorm.DB
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db}
}

// SearchMembers matches by name prefix or exact mobile number and unions the
// two result sets by id. Prefix search on name is not full-text; that is a
// documented limitation carried over from the original lookup.
func (s *MemberService) SearchMembers(term string) ([]models.Member, error) {
	if term == "" {
		return []models.Member{}, nil
	}

	var byName []models.Member
	if err := s.db.Preload("Plan").
		Where("name LIKE ?", term+"%").
		Order("name").
		Find(&byName).Error; err != nil {
		return nil, err
	}

	var byMobile []models.Member
	if err := s.db.Preload("Plan").
		Where("mobile_number = ?", term).
		Find(&byMobile).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(byName))
	results := byName
	for i := range byName {
		seen[byName[i].ID] = true
	}
	for i := range byMobile {
		if !seen[byMobile[i].ID] {
			results = append(results, byMobile[i])
		}
	}
	return results, nil
}

// CreateMember registers a member on a plan, seeding the hours balance from
// the plan's total hours.
func (s *MemberService) CreateMember(name string, planID uint, mobile string, validity *time.Time) (*models.Member, error) {
	var plan models.MembershipPlan
	if err := s.db.First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("membership plan not found")
		}
		return nil, err
	}

	member := &models.Member{
		Name:           name,
		PlanID:         plan.ID,
		RemainingHours: plan.TotalHours,
		MobileNumber:   mobile,
		ValidityDate:   validity,
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

// GetMember loads one member with its plan.
func (s *MemberService) GetMember(id uint) (*models.Member, error) {
	var member models.Member
	if err := s.db.Preload("Plan").First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}
