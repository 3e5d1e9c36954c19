package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory_Defaults(t *testing.T) {
	cat, err := NewCategory(1, "旅行", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Circle", cat.Icon)
	assert.Equal(t, "#6b7280", cat.Color)
	assert.Nil(t, cat.Type)
	assert.False(t, cat.IsDefault)
}

func TestNewCategory_Validation(t *testing.T) {
	// 空名称
	_, err := NewCategory(1, "  ", "", "", nil)
	assert.Error(t, err)

	// 超长名称
	long := make([]rune, 51)
	for i := range long {
		long[i] = '长'
	}
	_, err = NewCategory(1, string(long), "", "", nil)
	assert.Error(t, err)

	// 非法颜色
	_, err = NewCategory(1, "旅行", "", "red", nil)
	assert.Error(t, err)
	_, err = NewCategory(1, "旅行", "", "#zzzzzz", nil)
	assert.Error(t, err)

	// 非法类型
	bad := "TRANSFER"
	_, err = NewCategory(1, "旅行", "", "", &bad)
	assert.Error(t, err)

	// 合法
	income := TransactionTypeIncome
	cat, err := NewCategory(1, "工资", "Banknote", "#10b981", &income)
	require.NoError(t, err)
	assert.Equal(t, "INCOME", *cat.Type)
}

func TestCategory_CanBeDeleted(t *testing.T) {
	assert.False(t, (&Category{IsDefault: true}).CanBeDeleted())
	assert.True(t, (&Category{IsDefault: false}).CanBeDeleted())
}

func TestCategory_IsApplicableToTransactionType(t *testing.T) {
	income := TransactionTypeIncome
	expense := TransactionTypeExpense

	// NULL 类型对两种交易都适用
	both := &Category{Type: nil}
	assert.True(t, both.IsApplicableToTransactionType(TransactionTypeIncome))
	assert.True(t, both.IsApplicableToTransactionType(TransactionTypeExpense))
	assert.False(t, both.IsApplicableToTransactionType("TRANSFER"))

	incomeCat := &Category{Type: &income}
	assert.True(t, incomeCat.IsApplicableToTransactionType(TransactionTypeIncome))
	assert.False(t, incomeCat.IsApplicableToTransactionType(TransactionTypeExpense))

	expenseCat := &Category{Type: &expense}
	assert.False(t, expenseCat.IsApplicableToTransactionType(TransactionTypeIncome))
	assert.True(t, expenseCat.IsApplicableToTransactionType(TransactionTypeExpense))
}

func TestDefaultCategories(t *testing.T) {
	seeds := DefaultCategories()
	require.NotEmpty(t, seeds)
	for _, s := range seeds {
		cat, err := NewCategory(1, s.Name, s.Icon, s.Color, s.Type)
		require.NoError(t, err, "默认分类 %s 应通过校验", s.Name)
		cat.IsDefault = true
		assert.False(t, cat.CanBeDeleted())
	}
}
