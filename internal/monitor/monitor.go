package monitor

import (
	"context"
	"log"
	"time"

	"monitor-precos/internal/models"
	"monitor-precos/internal/pricesource"
)

// Store é a visão do monitor sobre o armazenamento de estado
type Store interface {
	GetAllUsers(ctx context.Context) ([]int64, error)
	GetProducts(ctx context.Context, userID int64) ([]models.Product, error)
	IsNotified(ctx context.Context, userID int64, url string) (bool, error)
	MarkNotified(ctx context.Context, userID int64, url string) error
}

// PriceSource consulta o preço atual de um conjunto de URLs
type PriceSource interface {
	FetchPrices(ctx context.Context, urls []string) map[string]pricesource.PriceResult
}

// Notifier entrega o alerta de preço para um usuário
type Notifier interface {
	SendPriceAlert(ctx context.Context, userID int64, product models.Product, currentPrice float64) error
}

// Options ajusta o comportamento do ciclo de monitoramento
type Options struct {
	Interval        time.Duration // intervalo entre ciclos
	BackoffInterval time.Duration // espera reduzida após um ciclo com falha
	CycleTimeout    time.Duration // watchdog: tempo máximo de um ciclo
	BatchSize       int           // URLs por lote
	BatchPause      time.Duration // pausa entre lotes
}

// Monitor gerencia o monitoramento periódico de produtos
type Monitor struct {
	store    Store
	source   PriceSource
	notifier Notifier
	opts     Options
}

// subscription liga um usuário a um produto da sua lista de acompanhamento
type subscription struct {
	UserID  int64
	Product models.Product
}

// New cria uma nova instância do monitor
func New(store Store, source PriceSource, notifier Notifier, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = 600 * time.Second
	}
	if opts.BackoffInterval <= 0 || opts.BackoffInterval >= opts.Interval {
		opts.BackoffInterval = opts.Interval / 2
	}
	if opts.CycleTimeout <= 0 {
		opts.CycleTimeout = 300 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	return &Monitor{
		store:    store,
		source:   source,
		notifier: notifier,
		opts:     opts,
	}
}

// Start executa ciclos de monitoramento até o contexto ser cancelado.
// Nenhuma falha de ciclo encerra o laço; um ciclo com erro apenas
// reduz a espera para o intervalo de backoff.
func (m *Monitor) Start(ctx context.Context) {
	log.Printf("Monitor iniciado. Verificando produtos a cada %v", m.opts.Interval)

	for {
		if ctx.Err() != nil {
			log.Println("Monitor encerrado")
			return
		}

		sleep := m.opts.Interval
		if err := m.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				log.Println("Monitor encerrado")
				return
			}
			log.Printf("Erro no ciclo de monitoramento: %v", err)
			sleep = m.opts.BackoffInterval
		}

		select {
		case <-ctx.Done():
			log.Println("Monitor encerrado")
			return
		case <-time.After(sleep):
		}
	}
}

// RunCycle executa uma passada completa: carregar, agrupar, buscar e avaliar.
// O ciclo inteiro roda sob um watchdog para nunca travar o encerramento.
func (m *Monitor) RunCycle(ctx context.Context) error {
	cycleCtx, cancel := context.WithTimeout(ctx, m.opts.CycleTimeout)
	defer cancel()

	subscriptions, err := m.loadSubscriptions(cycleCtx)
	if err != nil {
		return err
	}
	if len(subscriptions) == 0 {
		return nil
	}

	urls := m.pendingURLs(cycleCtx, subscriptions)
	batches := splitBatches(urls, m.opts.BatchSize)

	for i, batch := range batches {
		if i > 0 && m.opts.BatchPause > 0 {
			// Pausa entre lotes para não sobrecarregar as lojas
			select {
			case <-cycleCtx.Done():
				return cycleCtx.Err()
			case <-time.After(m.opts.BatchPause):
			}
		}

		results := m.source.FetchPrices(cycleCtx, batch)
		m.evaluateBatch(cycleCtx, batch, results, subscriptions)

		if cycleCtx.Err() != nil {
			return cycleCtx.Err()
		}
	}
	return nil
}

// loadSubscriptions monta o mapa URL -> interessados a partir das listas de
// todos os usuários. Uma mesma URL pode ter vários usuários com preços alvo
// diferentes. Falhas de leitura aqui abortam o ciclo.
func (m *Monitor) loadSubscriptions(ctx context.Context) (map[string][]subscription, error) {
	userIDs, err := m.store.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	subscriptions := make(map[string][]subscription)
	for _, userID := range userIDs {
		products, err := m.store.GetProducts(ctx, userID)
		if err != nil {
			return nil, err
		}
		// Usuários sem produtos são simplesmente ignorados
		for _, product := range products {
			if product.ProductURL == "" {
				continue
			}
			subscriptions[product.ProductURL] = append(subscriptions[product.ProductURL], subscription{
				UserID:  userID,
				Product: product,
			})
		}
	}
	return subscriptions, nil
}

// pendingURLs devolve as URLs com pelo menos um interessado ainda não
// notificado; buscar as demais seria desperdício. Em caso de erro de leitura
// a URL permanece no lote: a avaliação reconfere antes de notificar.
func (m *Monitor) pendingURLs(ctx context.Context, subscriptions map[string][]subscription) []string {
	urls := make([]string, 0, len(subscriptions))
	for url, subs := range subscriptions {
		pending := false
		for _, sub := range subs {
			notified, err := m.store.IsNotified(ctx, sub.UserID, url)
			if err != nil {
				log.Printf("Erro ao consultar estado de notificação (%d, %s): %v", sub.UserID, url, err)
				pending = true
				break
			}
			if !notified {
				pending = true
				break
			}
		}
		if pending {
			urls = append(urls, url)
		}
	}
	return urls
}

// evaluateBatch aplica a condição de preço alvo a cada par (usuário, produto)
// de cada URL do lote. Erros são sempre por par e nunca escalam.
func (m *Monitor) evaluateBatch(ctx context.Context, batch []string, results map[string]pricesource.PriceResult, subscriptions map[string][]subscription) {
	for _, url := range batch {
		result, ok := results[url]
		if !ok {
			log.Printf("Fonte de preços não retornou resultado para %s", url)
			continue
		}
		if result.Err != nil {
			// Sem nova tentativa neste ciclo; a URL segue não notificada
			log.Printf("Erro ao buscar preço de %s: %v", url, result.Err)
			continue
		}

		for _, sub := range subscriptions[url] {
			m.evaluateSubscription(ctx, url, sub, result.Price)
		}
	}
}

// evaluateSubscription decide e dispara o alerta de um único par.
// A ordem importa: notificar primeiro, marcar depois. Uma notificação que
// falhou não pode deixar a URL marcada, senão o alerta se perderia.
func (m *Monitor) evaluateSubscription(ctx context.Context, url string, sub subscription, currentPrice float64) {
	// Condição é <=: preço igual ao alvo também dispara. Alvo 0 significa
	// "avisar assim que houver preço", nunca "desativado"
	if sub.Product.TargetPrice > 0 && currentPrice > sub.Product.TargetPrice {
		return
	}

	notified, err := m.store.IsNotified(ctx, sub.UserID, url)
	if err != nil {
		log.Printf("Erro ao consultar estado de notificação (%d, %s): %v", sub.UserID, url, err)
		return
	}
	if notified {
		return
	}

	if err := m.notifier.SendPriceAlert(ctx, sub.UserID, sub.Product, currentPrice); err != nil {
		log.Printf("Erro ao notificar usuário %d sobre %s: %v", sub.UserID, url, err)
		return
	}

	if err := m.store.MarkNotified(ctx, sub.UserID, url); err != nil {
		// O alerta já saiu; na pior hipótese o próximo ciclo repete a
		// notificação (preferimos duplicar a perder)
		log.Printf("Erro ao marcar notificação (%d, %s): %v", sub.UserID, url, err)
		return
	}

	log.Printf("Notificação enviada para o usuário %d (%s)", sub.UserID, url)
}

// splitBatches particiona as URLs em lotes de tamanho fixo
func splitBatches(urls []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	var batches [][]string
	for start := 0; start < len(urls); start += size {
		end := start + size
		if end > len(urls) {
			end = len(urls)
		}
		batches = append(batches, urls[start:end])
	}
	return batches
}
