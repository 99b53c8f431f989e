package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/qs3c/ad_reward_server/internal/model"
)

var (
	ErrSettingNotFound     = errors.New("设置项不存在")
	ErrInvalidSettingValue = errors.New("设置值无效")
)

// SettingValue 按声明类型解析后的设置值，只有与 Kind 对应的字段有效
type SettingValue struct {
	Kind   model.SettingType
	String string
	Number float64
	Bool   bool
	JSON   json.RawMessage
}

// ParseSettingValue 按声明类型解析管理员提交的值
// json 类型收到字符串时会把字符串内容当作 JSON 再解析一次
func ParseSettingValue(typ model.SettingType, raw json.RawMessage) (SettingValue, error) {
	return parseSettingValue(typ, raw, true)
}

// DecodeStoredSetting 解析数据库中已规范化的值
func DecodeStoredSetting(s *model.SystemSetting) (SettingValue, error) {
	return parseSettingValue(s.Type, json.RawMessage(s.Value), false)
}

func parseSettingValue(typ model.SettingType, raw json.RawMessage, unwrapText bool) (SettingValue, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return SettingValue{}, fmt.Errorf("%w: 值不能为空", ErrInvalidSettingValue)
	}

	var v interface{}
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return SettingValue{}, fmt.Errorf("%w: 不是合法的 JSON", ErrInvalidSettingValue)
	}

	out := SettingValue{Kind: typ}
	switch typ {
	case model.SettingTypeString:
		s, ok := v.(string)
		if !ok {
			return SettingValue{}, typeMismatch(typ)
		}
		out.String = s
	case model.SettingTypeNumber:
		f, ok := v.(float64)
		if !ok {
			return SettingValue{}, typeMismatch(typ)
		}
		out.Number = f
	case model.SettingTypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return SettingValue{}, typeMismatch(typ)
		}
		out.Bool = b
	case model.SettingTypeJSON:
		if s, ok := v.(string); ok && unwrapText {
			var inner interface{}
			if err := json.Unmarshal([]byte(s), &inner); err != nil {
				return SettingValue{}, fmt.Errorf("%w: 字符串内容不是合法的 JSON", ErrInvalidSettingValue)
			}
			v = inner
		}
		canonical, err := json.Marshal(v)
		if err != nil {
			return SettingValue{}, fmt.Errorf("%w: %v", ErrInvalidSettingValue, err)
		}
		out.JSON = canonical
	default:
		return SettingValue{}, fmt.Errorf("%w: 未知的设置类型 %q", ErrInvalidSettingValue, typ)
	}

	return out, nil
}

func typeMismatch(typ model.SettingType) error {
	return fmt.Errorf("%w: 值必须为 %s 类型", ErrInvalidSettingValue, typ)
}

// Canonical 返回用于存储和比较的规范 JSON 文本
func (v SettingValue) Canonical() string {
	var (
		b   []byte
		err error
	)
	switch v.Kind {
	case model.SettingTypeString:
		b, err = json.Marshal(v.String)
	case model.SettingTypeNumber:
		b, err = json.Marshal(v.Number)
	case model.SettingTypeBoolean:
		b, err = json.Marshal(v.Bool)
	default:
		return string(v.JSON)
	}
	if err != nil {
		return ""
	}
	return string(b)
}

// Validate 检查值是否满足校验规则
func (v SettingValue) Validate(rules model.SettingValidation) error {
	switch v.Kind {
	case model.SettingTypeNumber:
		if rules.Min != nil && v.Number < *rules.Min {
			return fmt.Errorf("%w: 不能小于 %v", ErrInvalidSettingValue, *rules.Min)
		}
		if rules.Max != nil && v.Number > *rules.Max {
			return fmt.Errorf("%w: 不能大于 %v", ErrInvalidSettingValue, *rules.Max)
		}
	case model.SettingTypeString:
		if rules.Pattern != "" {
			re, err := regexp.Compile(rules.Pattern)
			if err != nil {
				return fmt.Errorf("%w: 校验规则 pattern 无效", ErrInvalidSettingValue)
			}
			if !re.MatchString(v.String) {
				return fmt.Errorf("%w: 不符合格式 %s", ErrInvalidSettingValue, rules.Pattern)
			}
		}
	}

	if len(rules.Options) > 0 {
		current := v.Canonical()
		for _, opt := range rules.Options {
			if canonical, err := canonicalJSON(opt); err == nil && canonical == current {
				return nil
			}
		}
		return fmt.Errorf("%w: 不在可选值范围内", ErrInvalidSettingValue)
	}

	return nil
}

func canonicalJSON(raw json.RawMessage) (string, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
