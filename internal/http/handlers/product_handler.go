package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"tengemart/internal/domain"
	applog "tengemart/internal/log"
	"tengemart/internal/marketplace"
	"tengemart/internal/validate"
)

type ProductHandler struct {
	API *marketplace.Client
}

// Home degrades each section independently: a failed backend call renders an
// empty section, never an error page.
func (h *ProductHandler) Home(c *fiber.Ctx) error {
	ctx := c.Context()

	cats, err := h.API.Categories(ctx)
	if err != nil {
		applog.Upstream(c, "home.categories", string(marketplace.Classify(err)), err)
	}
	featured, err := h.API.Featured(ctx)
	if err != nil {
		applog.Upstream(c, "home.featured", string(marketplace.Classify(err)), err)
	}
	latest, err := h.API.Latest(ctx)
	if err != nil {
		applog.Upstream(c, "home.latest", string(marketplace.Classify(err)), err)
	}

	return render(c, "home", fiber.Map{
		"Categories": cats,
		"Featured":   featured,
		"Latest":     latest,
	})
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	q := marketplace.ProductQuery{Page: c.QueryInt("page", 1)}
	if q.Page < 1 {
		q.Page = 1
	}
	q.Search = c.Query("search")
	if id, ok := validate.ID(c.Query("category")); ok {
		q.Category = id
	}

	page, err := h.API.Products(c.Context(), token(c), q)
	if err != nil {
		applog.Upstream(c, "products.list", string(marketplace.Classify(err)), err)
		return render(c, "products", fiber.Map{
			"Err":      "Could not load products. Please try again.",
			"Search":   q.Search,
			"Category": q.Category,
			"Page":     q.Page,
		})
	}

	cats, err := h.API.Categories(c.Context())
	if err != nil {
		applog.Upstream(c, "products.categories", string(marketplace.Classify(err)), err)
	}

	return render(c, "products", fiber.Map{
		"Products":   page.Results,
		"Categories": cats,
		"Page":       q.Page,
		"TotalPages": page.TotalPages(),
		"HasNext":    page.HasNext(),
		"HasPrev":    page.HasPrevious(),
		"Search":     q.Search,
		"Category":   q.Category,
	})
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	}
	p, err := h.API.Product(c.Context(), id)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	}

	cats, _ := h.API.Categories(c.Context())

	u := currentUser(c)
	return render(c, "product", fiber.Map{
		"P":        p,
		"Price":    domain.FormatPrice(p.Price),
		"Category": categoryName(cats, p.Category),
		"CanBuy":   u.IsCustomer() && p.InStock(),
		"OwnsThis": u != nil && p.Trader == u.ID,
	})
}

func (h *ProductHandler) MyListings(c *fiber.Ctx) error {
	ps, err := h.API.MyListings(c.Context(), token(c))
	if err != nil {
		applog.Upstream(c, "listings.load", string(marketplace.Classify(err)), err)
		return render(c, "listings", fiber.Map{"Err": "Could not load your listings."})
	}
	return render(c, "listings", fiber.Map{"Products": ps})
}

func (h *ProductHandler) NewForm(c *fiber.Ctx) error {
	cats, err := h.API.Categories(c.Context())
	if err != nil {
		applog.Upstream(c, "listings.categories", string(marketplace.Classify(err)), err)
	}
	return render(c, "product_form", fiber.Map{"Categories": cats, "Mode": "create"})
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	form, errMsg := h.parseForm(c)
	if errMsg != "" {
		applog.Security(c, "validation.fail", map[string]any{"form": "product"})
		return render(c.Status(400), "product_form", fiber.Map{"Err": errMsg, "Mode": "create"})
	}

	p, err := h.API.CreateProduct(c.Context(), token(c), form)
	if err != nil {
		applog.Error(c, "listings.create.fail", err, nil)
		return render(c.Status(400), "product_form", fiber.Map{"Err": marketplace.Reason(err), "Mode": "create"})
	}

	applog.Audit(c, "listings.create", map[string]any{"product_id": p.ID})
	return c.Redirect("/listings")
}

func (h *ProductHandler) EditForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Listing not found"})
	}
	p, err := h.API.Product(c.Context(), id)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Listing not found"})
	}
	cats, _ := h.API.Categories(c.Context())
	return render(c, "product_form", fiber.Map{"P": p, "Categories": cats, "Mode": "edit"})
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Listing not found"})
	}
	form, errMsg := h.parseForm(c)
	if errMsg != "" {
		return render(c.Status(400), "product_form", fiber.Map{"Err": errMsg, "Mode": "edit"})
	}

	if _, err := h.API.UpdateProduct(c.Context(), token(c), id, form); err != nil {
		applog.Error(c, "listings.update.fail", err, map[string]any{"product_id": id})
		return render(c.Status(400), "product_form", fiber.Map{"Err": marketplace.Reason(err), "Mode": "edit"})
	}

	applog.Audit(c, "listings.update", map[string]any{"product_id": id})
	return c.Redirect("/listings")
}

// Delete hard-removes the listing, then reloads the trader's set.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Listing not found"})
	}
	if err := h.API.DeleteProduct(c.Context(), token(c), id); err != nil {
		applog.Error(c, "listings.delete.fail", err, map[string]any{"product_id": id})
		return c.Redirect("/listings?msg=" + escape("Could not delete the listing."))
	}
	applog.Audit(c, "listings.delete", map[string]any{"product_id": id})
	return c.Redirect("/listings")
}

func (h *ProductHandler) parseForm(c *fiber.Ctx) (marketplace.ProductForm, string) {
	var form marketplace.ProductForm
	var ok bool

	if form.Title, ok = validate.Title(c.FormValue("title")); !ok {
		return form, "A title is required"
	}
	form.Description = c.FormValue("description")
	if form.Price, ok = validate.Price(c.FormValue("price")); !ok {
		return form, "Enter a valid price"
	}
	if form.Stock, ok = validate.Stock(c.FormValue("stock")); !ok {
		return form, "Enter a valid stock count"
	}
	if form.Category, ok = validate.ID(c.FormValue("category")); !ok {
		return form, "Pick a category"
	}

	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			return form, "Could not read the uploaded image"
		}
		// fasthttp keeps the part in memory; the reader stays valid for the
		// request lifetime.
		form.Image = &marketplace.Upload{Field: "image", Name: fh.Filename, Content: f}
	}
	return form, ""
}

// categoryName resolves an id for display, tolerating a failed lookup.
func categoryName(cats []domain.Category, id int64) string {
	if cat, ok := lo.Find(cats, func(cat domain.Category) bool { return cat.ID == id }); ok {
		return cat.Name
	}
	return ""
}
