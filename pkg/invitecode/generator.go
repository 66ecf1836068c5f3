package invitecode

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// Charset 邀请码字符集：大写字母 + 数字，剔除易混淆字符 0/O、1/I/L
const Charset = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// DefaultLength 默认邀请码长度
const DefaultLength = 8

var ErrBadLength = errors.New("邀请码长度无效")

// Generator 邀请码生成器
// 唯一性由存储层的唯一索引保证，生成器只负责随机抽取；
// 碰撞时由调用方重新抽取
type Generator struct {
	length int
}

// NewGenerator 创建指定长度的生成器，length <= 0 时使用默认长度
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Generate 随机生成一个邀请码
func (g *Generator) Generate() (string, error) {
	max := big.NewInt(int64(len(Charset)))
	var sb strings.Builder
	sb.Grow(g.length)

	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(Charset[n.Int64()])
	}

	return sb.String(), nil
}

// Normalize 归一化用户输入的邀请码（大小写不敏感匹配）
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
