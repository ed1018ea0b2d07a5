package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// 协议违规的分类，读泵据此关闭连接
var (
	ErrMalformed    = errors.New("malformed message")
	ErrUnknownKind  = errors.New("unknown message kind")
	ErrMissingField = errors.New("missing field")
	ErrUnknownField = errors.New("unknown field")
	ErrDuplicateKey = errors.New("duplicate field")
	ErrInvalidField = errors.New("invalid field")
)

const kindMoveIntent = "MoveIntent"

// MoveIntent 客户端输入（意图），由服务端在 Tick 中解释并驱动世界状态
// 入站示例：{"kind":"MoveIntent","start":true,"direction":"up"}
type MoveIntent struct {
	Direction Direction
	Start     bool
}

// ParseClientMessage 严格解析一条客户端消息：先判 kind，再按该 kind 的字段集逐一校验
// 字段集必须完全一致，多一个、少一个或类型不符都视为协议违规
func ParseClientMessage(payload []byte) (MoveIntent, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil || fields == nil {
		return MoveIntent{}, ErrMalformed
	}
	// map 解码时重复键后者覆盖前者，需单独拒绝
	if err := uniqueKeys(payload); err != nil {
		return MoveIntent{}, err
	}
	var kind string
	if err := decodeField(fields, "kind", &kind); err != nil {
		return MoveIntent{}, err
	}
	switch kind {
	case kindMoveIntent:
		return parseMoveIntent(fields)
	default:
		return MoveIntent{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func parseMoveIntent(fields map[string]json.RawMessage) (MoveIntent, error) {
	if err := exactFields(fields, "kind", "start", "direction"); err != nil {
		return MoveIntent{}, err
	}
	var (
		m   MoveIntent
		dir string
	)
	if err := decodeField(fields, "start", &m.Start); err != nil {
		return MoveIntent{}, err
	}
	if err := decodeField(fields, "direction", &dir); err != nil {
		return MoveIntent{}, err
	}
	d, ok := ParseDirection(dir)
	if !ok {
		return MoveIntent{}, fmt.Errorf("%w: direction %q", ErrInvalidField, dir)
	}
	m.Direction = d
	return m, nil
}

func exactFields(fields map[string]json.RawMessage, names ...string) error {
	for _, name := range names {
		if _, ok := fields[name]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}
	if len(fields) != len(names) {
		for key := range fields {
			if !slices.Contains(names, key) {
				return fmt.Errorf("%w: %s", ErrUnknownField, key)
			}
		}
	}
	return nil
}

// decodeField 按目标类型解码；null 不被接受
func decodeField(fields map[string]json.RawMessage, name string, out any) error {
	raw, ok := fields[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("%w: %s is null", ErrInvalidField, name)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidField, name)
	}
	return nil
}

// uniqueKeys 逐个扫描顶层对象的键，出现重复即报错；值本身跳过不解析
func uniqueKeys(payload []byte) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return ErrMalformed
	}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return ErrMalformed
		}
		key, ok := tok.(string)
		if !ok {
			return ErrMalformed
		}
		if seen[key] {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
		}
		seen[key] = true
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return ErrMalformed
		}
	}
	return nil
}
