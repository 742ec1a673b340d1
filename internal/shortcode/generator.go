package shortcode

import (
	"crypto/sha256"
	"encoding/base64"
	"math/rand"
	"sync"
	"time"
)

const DefaultCodeLength = 8

// Generator выводит кандидата короткого кода из длинной ссылки.
// Кандидат - перемешанный префикс base64url-дайджеста SHA-256, поэтому
// повторные вызовы для одного и того же URL дают разные кандидаты
// и повторная попытка после коллизии имеет смысл.
type Generator struct {
	length int

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator создает генератор с заданной длиной кода и источником
// случайности. Источник инжектируется для детерминированных тестов;
// nil означает источник, засеянный текущим временем.
func NewGenerator(length int, src rand.Source) *Generator {
	if length <= 0 || length > base64.RawURLEncoding.EncodedLen(sha256.Size) {
		length = DefaultCodeLength
	}
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Generator{
		length: length,
		rnd:    rand.New(src),
	}
}

// Code возвращает кандидата короткого кода для originalURL.
func (g *Generator) Code(originalURL string) string {
	// Кодирование без паддинга: '=' не должен попадать в код
	digest := sha256.Sum256([]byte(originalURL))
	encoded := base64.RawURLEncoding.EncodeToString(digest[:])

	code := []byte(encoded[:g.length])

	// rand.Rand не потокобезопасен
	g.mu.Lock()
	g.rnd.Shuffle(len(code), func(i, j int) {
		code[i], code[j] = code[j], code[i]
	})
	g.mu.Unlock()

	return string(code)
}

// Length возвращает длину генерируемых кодов.
func (g *Generator) Length() int {
	return g.length
}
