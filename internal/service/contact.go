package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"SafeTrip/config"
	"SafeTrip/internal/model"
	pkgerrors "SafeTrip/pkg/errors"
	"SafeTrip/pkg/logger"
	"SafeTrip/storage/redis"
	"SafeTrip/utils"
)

const contactsKeySuffix = "contacts"

// ContactService 紧急联系人管理。警报广播的受众来自这里。
type ContactService struct {
	mu         sync.Mutex
	rdb        *goredis.Client
	maxEntries int
}

var (
	contactService *ContactService
	contactOnce    sync.Once
)

func NewContacts(rdb *goredis.Client, maxEntries int) *ContactService {
	if maxEntries <= 0 {
		maxEntries = 10
	}
	return &ContactService{rdb: rdb, maxEntries: maxEntries}
}

func Contacts() *ContactService {
	contactOnce.Do(func() {
		contactService = NewContacts(redis.Client(), config.Cfg.ContactMaxEntries)
	})
	return contactService
}

// List 按优先级升序返回全部紧急联系人
func (s *ContactService) List(ctx context.Context) []model.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Add 新增联系人。手机号重复时覆盖原条目。
func (s *ContactService) Add(ctx context.Context, req model.CreateContactRequest) (*model.Contact, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.InvalidInput
	}
	if !utils.ValidatePhone(req.Phone) {
		return nil, pkgerrors.InvalidPhone
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contacts := s.loadLocked(ctx)

	replaced := false
	for i, c := range contacts {
		if c.Phone == req.Phone {
			contacts[i] = model.Contact{Name: name, Phone: req.Phone, Priority: req.Priority}
			replaced = true
			break
		}
	}

	if !replaced {
		if len(contacts) >= s.maxEntries {
			return nil, pkgerrors.ContactLimitReached
		}
		contacts = append(contacts, model.Contact{Name: name, Phone: req.Phone, Priority: req.Priority})
	}

	sort.SliceStable(contacts, func(i, j int) bool {
		return contacts[i].Priority < contacts[j].Priority
	})

	if err := s.saveLocked(ctx, contacts); err != nil {
		return nil, err
	}

	added := model.Contact{Name: name, Phone: req.Phone, Priority: req.Priority}
	return &added, nil
}

// Remove 按手机号删除联系人
func (s *ContactService) Remove(ctx context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts := s.loadLocked(ctx)

	filtered := contacts[:0]
	for _, c := range contacts {
		if c.Phone != phone {
			filtered = append(filtered, c)
		}
	}

	if len(filtered) == len(contacts) {
		return pkgerrors.ContactNotFound
	}

	return s.saveLocked(ctx, filtered)
}

func (s *ContactService) loadLocked(ctx context.Context) []model.Contact {
	raw, err := s.rdb.Get(ctx, redis.Key(contactsKeySuffix)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			logger.Logger.Warn("Failed to load contacts", zap.Error(err))
		}
		return []model.Contact{}
	}

	var contacts []model.Contact
	if err := json.Unmarshal(raw, &contacts); err != nil {
		logger.Logger.Warn("Corrupt contact list, treating as empty", zap.Error(err))
		return []model.Contact{}
	}
	return contacts
}

func (s *ContactService) saveLocked(ctx context.Context, contacts []model.Contact) error {
	raw, err := json.Marshal(contacts)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redis.Key(contactsKeySuffix), raw, 0).Err()
}
