package service

import "strings"

// extractJSON убирает markdown-ограждения вокруг JSON-ответа оракула.
// Некоторые модели заворачивают JSON в ```json ... ``` даже в JSON-режиме.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
