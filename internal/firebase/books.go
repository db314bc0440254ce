package firebase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"livraria/internal/models"
	"livraria/internal/store"
)

// BooksCollection é o nome da coleção de livros no Firestore.
const BooksCollection = "livros"

// bookDocument é o formato gravado no Firestore. O preço vai como float64
// para a ordenação funcionar no servidor.
type bookDocument struct {
	Titulo        string    `firestore:"titulo"`
	Autor         string    `firestore:"autor"`
	Editora       string    `firestore:"editora"`
	Preco         *float64  `firestore:"preco"`
	Paginas       int       `firestore:"paginas"`
	AnoPublicacao *int      `firestore:"anoPublicacao"`
	ISBN          string    `firestore:"isbn"`
	CapaURL       string    `firestore:"capaUrl"`
	Desenvolvedor string    `firestore:"desenvolvedor"`
	CreatedAt     time.Time `firestore:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
}

func toDocument(b *models.Book) bookDocument {
	doc := bookDocument{
		Titulo:        b.Titulo,
		Autor:         b.Autor,
		Editora:       b.Editora,
		Paginas:       b.Paginas,
		AnoPublicacao: b.AnoPublicacao,
		ISBN:          b.ISBN,
		CapaURL:       b.CapaURL,
		Desenvolvedor: b.Desenvolvedor,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.Preco != nil {
		f := b.Preco.InexactFloat64()
		doc.Preco = &f
	}
	return doc
}

func (d bookDocument) book(id string) *models.Book {
	b := &models.Book{
		ID:            id,
		Titulo:        d.Titulo,
		Autor:         d.Autor,
		Editora:       d.Editora,
		Paginas:       d.Paginas,
		AnoPublicacao: d.AnoPublicacao,
		ISBN:          d.ISBN,
		CapaURL:       d.CapaURL,
		Desenvolvedor: d.Desenvolvedor,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.Preco != nil {
		b.Preco = models.NewPreco(*d.Preco)
	}
	return b
}

func decode(snap *firestore.DocumentSnapshot) (*models.Book, error) {
	var doc bookDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("erro ao ler os dados do livro %s: %w", snap.Ref.ID, err)
	}
	return doc.book(snap.Ref.ID), nil
}

// Store implementa store.BookStore sobre o Firestore.
type Store struct {
	client *Client
	now    func() time.Time
}

var _ store.BookStore = (*Store)(nil)

// NewStore cria o store a partir de um cliente já inicializado.
func NewStore(client *Client) *Store {
	return &Store{client: client, now: time.Now}
}

func (s *Store) books() *firestore.CollectionRef {
	return s.client.Firestore.Collection(BooksCollection)
}

// List devolve uma página ordenada e o total de livros.
func (s *Store) List(ctx context.Context, q store.ListQuery) ([]*models.Book, int, error) {
	q = q.Normalize()

	direction := firestore.Asc
	if q.Direction == "desc" {
		direction = firestore.Desc
	}

	total, err := s.count(ctx)
	if err != nil {
		return nil, 0, err
	}

	query := s.books().
		OrderBy(q.Sort, direction).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Offset(q.Offset()).
		Limit(q.Limit)

	books, err := s.collect(query.Documents(ctx))
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (s *Store) count(ctx context.Context) (int, error) {
	res, err := s.books().NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("erro ao contar os livros: %w", err)
	}
	v, ok := res["total"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("resposta de contagem inesperada: %T", res["total"])
	}
	return int(v.GetIntegerValue()), nil
}

func (s *Store) collect(iter *firestore.DocumentIterator) ([]*models.Book, error) {
	defer iter.Stop()

	books := make([]*models.Book, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao percorrer os livros: %w", err)
		}
		b, err := decode(snap)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, nil
}

// Get busca um livro pelo id.
func (s *Store) Get(ctx context.Context, id string) (*models.Book, error) {
	if id == "" {
		return nil, store.ErrNotFound
	}

	snap, err := s.books().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar o livro: %w", err)
	}
	return decode(snap)
}

// Create grava um novo livro com id gerado pelo Firestore.
func (s *Store) Create(ctx context.Context, in models.BookInput) (*models.Book, error) {
	now := s.now().UTC()
	ref := s.books().NewDoc()

	b := &models.Book{ID: ref.ID, CreatedAt: now, UpdatedAt: now}
	b.Apply(in)

	if _, err := ref.Create(ctx, toDocument(b)); err != nil {
		return nil, fmt.Errorf("erro ao gravar o livro: %w", err)
	}
	return b, nil
}

// Update substitui os campos editáveis; createdAt é preservado.
func (s *Store) Update(ctx context.Context, id string, in models.BookInput) (*models.Book, error) {
	ref := s.books().Doc(id)

	var updated *models.Book
	err := s.client.Firestore.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		b, err := decode(snap)
		if err != nil {
			return err
		}
		b.Apply(in)
		b.UpdatedAt = s.now().UTC()
		updated = b
		return tx.Set(ref, toDocument(b))
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao atualizar o livro: %w", err)
	}
	return updated, nil
}

// Delete remove o livro. Um id inexistente devolve store.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if _, err := s.books().Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("erro ao excluir o livro: %w", err)
	}
	return nil
}

// Search filtra na aplicação, já que o Firestore não tem busca por substring.
func (s *Store) Search(ctx context.Context, term string) ([]*models.Book, error) {
	all, err := s.collect(s.books().OrderBy("titulo", firestore.Asc).Documents(ctx))
	if err != nil {
		return nil, err
	}

	results := make([]*models.Book, 0)
	for _, b := range all {
		if store.Matches(b, term) {
			results = append(results, b)
		}
	}
	store.SortBooks(results, "titulo", "asc")
	return results, nil
}

// Close encerra o cliente.
func (s *Store) Close() error {
	return s.client.Close()
}
