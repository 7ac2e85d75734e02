package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var supportedDomains = []string{"ozon.ru", "wildberries.ru", "market.yandex.ru"}

var productIDPatterns = map[string]*regexp.Regexp{
	"ozon.ru":          regexp.MustCompile(`/product/([^/?]+)`),
	"wildberries.ru":   regexp.MustCompile(`/catalog/(\d+)`),
	"market.yandex.ru": regexp.MustCompile(`/product--([^/?]+)`),
}

var nonPriceChars = regexp.MustCompile(`[^0-9.]`)

// ValidateURL verifica se a URL pertence a um marketplace suportado.
// Retorna a URL original ou string vazia quando não é suportada.
func ValidateURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}

	domain := strings.TrimPrefix(parsed.Host, "www.")
	for _, supported := range supportedDomains {
		if domain == supported || strings.HasSuffix(domain, "."+supported) {
			return rawURL
		}
	}
	return ""
}

// ExtractProductID extrai o identificador do produto a partir da URL da loja
func ExtractProductID(rawURL string) string {
	for domain, pattern := range productIDPatterns {
		if strings.Contains(rawURL, domain) {
			matches := pattern.FindStringSubmatch(rawURL)
			if len(matches) > 1 {
				return matches[1]
			}
			return ""
		}
	}
	return ""
}

// parsePrice converte o texto de preço da página em um valor numérico.
// Aceita separador de milhar com espaço ou ponto e vírgula decimal.
func parsePrice(text string) (float64, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return 0, fmt.Errorf("texto de preço vazio")
	}

	// "1 234,56 ₽" -> "1234.56"
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	cleaned = nonPriceChars.ReplaceAllString(cleaned, "")

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("erro ao parsear preço '%s': %v", text, err)
	}
	return price, nil
}

func cleanURL(rawURL string) string {
	parts := strings.Split(rawURL, "#")
	return parts[0]
}
