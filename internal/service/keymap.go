package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/bigkaa/goartstore/mcp-sync/internal/panel"
)

// KeyMap — ключи панели, проиндексированные по токену хост-системы.
// Строится одним запросом списка ключей и передаётся через пакетную
// синхронизацию, чтобы не запрашивать список для каждого пользователя.
type KeyMap struct {
	byToken map[string]panel.Key
}

// NewKeyMap строит индекс. Ключи без moodleToken пропускаются.
func NewKeyMap(keys []panel.Key) *KeyMap {
	m := &KeyMap{byToken: make(map[string]panel.Key, len(keys))}
	for _, k := range keys {
		m.Put(k)
	}
	return m
}

// Get возвращает ключ по токену.
func (m *KeyMap) Get(token string) (panel.Key, bool) {
	k, ok := m.byToken[token]
	return k, ok
}

// Put добавляет или заменяет ключ.
func (m *KeyMap) Put(k panel.Key) {
	if k.MoodleToken == "" {
		return
	}
	m.byToken[k.MoodleToken] = k
}

// Remove удаляет ключ по токену.
func (m *KeyMap) Remove(token string) {
	delete(m.byToken, token)
}

// Len — количество ключей.
func (m *KeyMap) Len() int {
	return len(m.byToken)
}

// Tokens возвращает отсортированный список токенов.
func (m *KeyMap) Tokens() []string {
	out := make([]string, 0, len(m.byToken))
	for t := range m.byToken {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// loadKeyMap запрашивает список ключей панели.
// При недействительной лицензии или ошибке панели возвращается пустой индекс.
func loadKeyMap(ctx context.Context, p KeyPanel, lic panel.License, logger *slog.Logger) *KeyMap {
	if !lic.Valid() {
		return NewKeyMap(nil)
	}
	keys, err := p.ListKeys(ctx, lic)
	if err != nil {
		logger.Warn("Не удалось получить список ключей панели", slog.String("error", err.Error()))
		return NewKeyMap(nil)
	}
	km := NewKeyMap(keys)
	logger.Debug("Список ключей панели загружен", slog.Int("keys", km.Len()))
	return km
}
