package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ==================== 供应商价目表 ====================

// PriceList 供应商价目表文档
//
//	shop: Acme
//	categories:
//	  - {id: 1, name: Tools}
//	goods:
//	  - {id: 100, name: Hammer, model: H1, category: 1, price: 9.99, price_rrc: 12.99, quantity: 5,
//	     parameters: {weight: 1kg}}
type PriceList struct {
	Shop       string              `yaml:"shop" validate:"required,max=50"`
	Categories []PriceListCategory `yaml:"categories" validate:"dive"`
	Goods      []PriceListGood     `yaml:"goods" validate:"dive"`
}

// PriceListCategory 分类条目
type PriceListCategory struct {
	ID   int64  `yaml:"id" validate:"required,gt=0"`
	Name string `yaml:"name" validate:"required,max=40"`
}

// PriceListGood 商品条目, id 为供应商商品 ID
type PriceListGood struct {
	ID         int64             `yaml:"id" validate:"required,gt=0"`
	Name       string            `yaml:"name" validate:"required,max=80"`
	Model      string            `yaml:"model" validate:"required,max=80"`
	Category   int64             `yaml:"category" validate:"required,gt=0"`
	Price      decimal.Decimal   `yaml:"price" validate:"gte=0"`
	PriceRRC   decimal.Decimal   `yaml:"price_rrc" validate:"gte=0"`
	Quantity   int               `yaml:"quantity" validate:"gte=0"`
	Parameters map[string]string `yaml:"parameters" validate:"dive,keys,required,max=40,endkeys,max=100"`
	Image      string            `yaml:"image" validate:"omitempty,url,max=512"`
}

// requiredPriceListKeys 文档顶层必须出现的键
var requiredPriceListKeys = []string{"shop", "categories", "goods"}

var priceListValidate = newPriceListValidator()

func newPriceListValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// 价格按浮点数参与 gte 校验
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// ParsePriceList 解析并校验价目表
// 无法解析或根节点不是映射时返回 ErrFormat, 内容不合法时返回 ErrValidation
func ParsePriceList(data []byte) (*PriceList, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newKindError(ErrFormat, "价目表为空")
		}
		return nil, newKindError(ErrFormat, "价目表 YAML 解析失败: %v", err)
	}
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, newKindError(ErrFormat, "价目表根节点必须是映射")
	}
	doc := root.Content[0]

	present := make(map[string]bool, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		present[doc.Content[i].Value] = true
	}
	var missing []string
	for _, key := range requiredPriceListKeys {
		if !present[key] {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, validationErr("价目表缺少必要字段: %s", strings.Join(missing, ", "))
	}

	var list PriceList
	if err := doc.Decode(&list); err != nil {
		return nil, newKindError(ErrFormat, "价目表结构错误: %v", err)
	}

	if err := list.Validate(); err != nil {
		return nil, err
	}
	return &list, nil
}

// Validate 字段校验, 并检查商品 ID 唯一及分类引用
func (p *PriceList) Validate() error {
	if err := priceListValidate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return validationErr("价目表字段不合法: %s", formatValidationErrors(verrs))
		}
		return validationErr("价目表字段不合法: %v", err)
	}

	categories := make(map[int64]bool, len(p.Categories))
	for _, c := range p.Categories {
		categories[c.ID] = true
	}

	seen := make(map[int64]bool, len(p.Goods))
	for _, g := range p.Goods {
		if seen[g.ID] {
			return validationErr("价目表中商品 id %d 重复", g.ID)
		}
		seen[g.ID] = true

		if !categories[g.Category] {
			return validationErr("商品 %d 引用了未声明的分类 %d", g.ID, g.Category)
		}
	}
	return nil
}

// ExternalIDs 文档中的全部供应商商品 ID
func (p *PriceList) ExternalIDs() []int64 {
	ids := make([]int64, 0, len(p.Goods))
	for _, g := range p.Goods {
		ids = append(ids, g.ID)
	}
	return ids
}

func formatValidationErrors(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "PriceList.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s(%s=%s)", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s(%s)", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
