package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/singladno/marinaobuv-sub001/internal/category"
	"github.com/singladno/marinaobuv-sub001/internal/category/dto"
	"github.com/singladno/marinaobuv-sub001/internal/model"
)

// selectCategories reads categories with the count of active products
// assigned directly to each one.
const selectCategories = `
	SELECT c.id, c.merchant_id, c.parent_id, c.name, c.slug, c.url_path,
	       c.description, c.icon, c.sort_order, c.is_active, c.created_at, c.updated_at,
	       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id AND p.is_active = TRUE) AS direct_product_count
	FROM categories c`

// SQLRepository stores categories through sqlx. Queries are written with
// '?' placeholders and rebound for the connected driver, so the same code
// serves Postgres (pgx) and SQLite.
type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, merchant_id, parent_id, name, slug, url_path, description, icon, sort_order, is_active, created_at, updated_at)
        VALUES (:id, :merchant_id, :parent_id, :name, :slug, :url_path, :description, :icon, :sort_order, :is_active, :created_at, :updated_at)
    `
	if _, err := r.DB.NamedExecContext(ctx, query, c); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert category %q: %w", c.Slug, category.ErrSlugTaken)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *SQLRepository) FindByID(ctx context.Context, merchantID, id string) (*model.Category, error) {
	var c model.Category
	query := r.DB.Rebind(selectCategories + ` WHERE c.id = ? AND c.merchant_id = ?`)
	if err := r.DB.GetContext(ctx, &c, query, id, merchantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find category %s: %w", id, err)
	}
	return &c, nil
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	var (
		conditions []string
		args       []any
	)
	if f.MerchantID != "" {
		conditions = append(conditions, "c.merchant_id = ?")
		args = append(args, f.MerchantID)
	}
	if f.ParentID != nil {
		if *f.ParentID == "" {
			conditions = append(conditions, "c.parent_id IS NULL")
		} else {
			conditions = append(conditions, "c.parent_id = ?")
			args = append(args, *f.ParentID)
		}
	}
	if f.IsActive != nil {
		conditions = append(conditions, "c.is_active = ?")
		args = append(args, *f.IsActive)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind("SELECT COUNT(*) FROM categories c"+where), args...); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	query := selectCategories + where + " ORDER BY c.sort_order ASC, c.name ASC, c.id ASC"
	if f.PageSize > 0 {
		page := max(f.Page, 1)
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	categories := []model.Category{}
	if err := r.DB.SelectContext(ctx, &categories, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return categories, count, nil
}

func (r *SQLRepository) FindAllByMerchant(ctx context.Context, merchantID string) ([]model.Category, error) {
	categories := []model.Category{}
	query := r.DB.Rebind(selectCategories + ` WHERE c.merchant_id = ? ORDER BY c.sort_order ASC, c.name ASC, c.id ASC`)
	if err := r.DB.SelectContext(ctx, &categories, query, merchantID); err != nil {
		return nil, fmt.Errorf("list merchant categories: %w", err)
	}
	return categories, nil
}

func (r *SQLRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET parent_id = :parent_id,
            name = :name,
            slug = :slug,
            url_path = :url_path,
            description = :description,
            icon = :icon,
            sort_order = :sort_order,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id AND merchant_id = :merchant_id
    `
	res, err := r.DB.NamedExecContext(ctx, query, c)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update category %s slug %q: %w", c.ID, c.Slug, category.ErrSlugTaken)
		}
		return fmt.Errorf("update category %s: %w", c.ID, err)
	}
	return expectRow(res, c.ID)
}

// UpdatePaths rewrites url_path for the given ids in one transaction.
func (r *SQLRepository) UpdatePaths(ctx context.Context, merchantID string, paths map[string]string) error {
	if len(paths) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin path update: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`UPDATE categories SET url_path = ?, updated_at = ? WHERE id = ? AND merchant_id = ?`))
	if err != nil {
		return fmt.Errorf("prepare path update: %w", err)
	}
	defer stmt.Close()

	ids := make([]string, 0, len(paths))
	for id := range paths {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	now := time.Now()
	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, paths[id], now, id, merchantID); err != nil {
			return fmt.Errorf("update path of %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// Delete removes the category and promotes its direct children to roots.
func (r *SQLRepository) Delete(ctx context.Context, merchantID, id string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE categories SET parent_id = NULL WHERE parent_id = ? AND merchant_id = ?`), id, merchantID); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("promote children of %s: %w", id, category.ErrSlugTaken)
		}
		return fmt.Errorf("detach children of %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM categories WHERE id = ? AND merchant_id = ?`), id, merchantID)
	if err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	if err := expectRow(res, id); err != nil {
		return err
	}
	return tx.Commit()
}

// SlugExists reports whether a sibling under parentID other than excludeID
// already uses slug.
func (r *SQLRepository) SlugExists(ctx context.Context, merchantID string, parentID *string, slug, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM categories WHERE merchant_id = ? AND slug = ? AND id <> ?`
	args := []any{merchantID, slug, excludeID}
	if parentID == nil || *parentID == "" {
		query += ` AND parent_id IS NULL`
	} else {
		query += ` AND parent_id = ?`
		args = append(args, *parentID)
	}

	var n int
	if err := r.DB.GetContext(ctx, &n, r.DB.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("check slug %q: %w", slug, err)
	}
	return n > 0, nil
}

func expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, category.ErrCategoryNotFound)
	}
	return nil
}
