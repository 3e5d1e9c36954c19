package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairedCouple() *Couple {
	two := uint(2)
	return &Couple{
		ID:           1,
		PartnerOneID: 1,
		PartnerTwoID: &two,
	}
}

func TestNewCouple(t *testing.T) {
	// 默认值
	c, err := NewCouple(1, "", 0)
	require.NoError(t, err)
	assert.Equal(t, FinancialModelTransparent, c.FinancialModel)
	assert.Equal(t, 1, c.AllowanceResetDay)

	// 非法财务模式
	_, err = NewCouple(1, "SECRET", 1)
	assert.Error(t, err)

	// 重置日越界
	_, err = NewCouple(1, FinancialModelCustom, 32)
	assert.Error(t, err)
	_, err = NewCouple(1, FinancialModelCustom, -1)
	assert.Error(t, err)

	c, err = NewCouple(1, FinancialModelAutonomous, 31)
	require.NoError(t, err)
	assert.Equal(t, 31, c.AllowanceResetDay)
}

func TestCouple_Membership(t *testing.T) {
	c := pairedCouple()
	assert.True(t, c.IsMember(1))
	assert.True(t, c.IsMember(2))
	assert.False(t, c.IsMember(3))
	assert.True(t, c.IsComplete())
	assert.False(t, (&Couple{PartnerOneID: 1}).IsComplete())
}

func TestCouple_AllowanceLifecycle(t *testing.T) {
	c := pairedCouple()

	require.NoError(t, c.SetAllowance(1, 10000)) // 100 元
	c.ResetAllowances()
	monthly, remaining, err := c.AllowanceFor(1)
	require.NoError(t, err)
	assert.Equal(t, Money(10000), monthly)
	assert.Equal(t, Money(10000), remaining)

	// 扣减
	require.NoError(t, c.SpendFree(1, 3000))
	_, remaining, _ = c.AllowanceFor(1)
	assert.Equal(t, Money(7000), remaining)

	// 超额扣减被拒绝
	assert.Error(t, c.SpendFree(1, 8000))
	_, remaining, _ = c.AllowanceFor(1)
	assert.Equal(t, Money(7000), remaining)

	// 回补不超过每月额度
	c.RestoreFree(1, 99999)
	_, remaining, _ = c.AllowanceFor(1)
	assert.Equal(t, Money(10000), remaining)

	// 调低每月额度时剩余额度同步封顶（remaining <= monthly 不变量）
	require.NoError(t, c.SetAllowance(1, 5000))
	_, remaining, _ = c.AllowanceFor(1)
	assert.Equal(t, Money(5000), remaining)

	// 非成员
	assert.Error(t, c.SpendFree(99, 100))
	assert.Error(t, c.SetAllowance(99, 100))
	_, _, err = c.AllowanceFor(99)
	assert.Error(t, err)
}

func TestCouple_ShouldResetOn(t *testing.T) {
	c := pairedCouple()
	c.AllowanceResetDay = 31

	// 2月没有31号，取月末
	feb28 := time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)
	assert.True(t, c.ShouldResetOn(feb28))
	feb27 := time.Date(2023, 2, 27, 0, 0, 0, 0, time.UTC)
	assert.False(t, c.ShouldResetOn(feb27))

	jan31 := time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.True(t, c.ShouldResetOn(jan31))

	c.AllowanceResetDay = 15
	jan15 := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.True(t, c.ShouldResetOn(jan15))
	assert.False(t, c.ShouldResetOn(jan31))
}
