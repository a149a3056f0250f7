package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SafeTrip/internal/model"
	pkgerrors "SafeTrip/pkg/errors"
)

func TestContactAddAndList(t *testing.T) {
	rdb := newTestRedis(t)
	c := NewContacts(rdb, 10)
	ctx := context.Background()

	_, err := c.Add(ctx, model.CreateContactRequest{Name: "Chidi", Phone: "+2348022222222", Priority: 2})
	require.NoError(t, err)
	_, err = c.Add(ctx, model.CreateContactRequest{Name: "Bisi", Phone: "+2348011111111", Priority: 1})
	require.NoError(t, err)

	contacts := c.List(ctx)
	require.Len(t, contacts, 2)

	// 按优先级升序
	assert.Equal(t, "Bisi", contacts[0].Name)
	assert.Equal(t, "Chidi", contacts[1].Name)
}

func TestContactValidation(t *testing.T) {
	rdb := newTestRedis(t)
	c := NewContacts(rdb, 10)
	ctx := context.Background()

	_, err := c.Add(ctx, model.CreateContactRequest{Name: "  ", Phone: "+2348011111111"})
	assert.ErrorIs(t, err, pkgerrors.InvalidInput)

	_, err = c.Add(ctx, model.CreateContactRequest{Name: "Bisi", Phone: "not-a-phone"})
	assert.ErrorIs(t, err, pkgerrors.InvalidPhone)
}

func TestContactDuplicatePhoneReplaces(t *testing.T) {
	rdb := newTestRedis(t)
	c := NewContacts(rdb, 10)
	ctx := context.Background()

	_, err := c.Add(ctx, model.CreateContactRequest{Name: "Bisi", Phone: "+2348011111111", Priority: 1})
	require.NoError(t, err)
	_, err = c.Add(ctx, model.CreateContactRequest{Name: "Bisi Updated", Phone: "+2348011111111", Priority: 3})
	require.NoError(t, err)

	contacts := c.List(ctx)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Bisi Updated", contacts[0].Name)
	assert.Equal(t, 3, contacts[0].Priority)
}

func TestContactLimit(t *testing.T) {
	rdb := newTestRedis(t)
	c := NewContacts(rdb, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.Add(ctx, model.CreateContactRequest{
			Name:     fmt.Sprintf("contact-%d", i),
			Phone:    fmt.Sprintf("+23480111111%02d", i),
			Priority: i,
		})
		require.NoError(t, err)
	}

	_, err := c.Add(ctx, model.CreateContactRequest{Name: "extra", Phone: "+2348099999999"})
	assert.ErrorIs(t, err, pkgerrors.ContactLimitReached)

	// 覆盖已有手机号不受上限限制
	_, err = c.Add(ctx, model.CreateContactRequest{Name: "renamed", Phone: "+2348011111100", Priority: 5})
	assert.NoError(t, err)
}

func TestContactRemove(t *testing.T) {
	rdb := newTestRedis(t)
	c := NewContacts(rdb, 10)
	ctx := context.Background()

	_, err := c.Add(ctx, model.CreateContactRequest{Name: "Bisi", Phone: "+2348011111111", Priority: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, c.Remove(ctx, "+2348099999999"), pkgerrors.ContactNotFound)
	assert.NoError(t, c.Remove(ctx, "+2348011111111"))
	assert.Empty(t, c.List(ctx))
}
