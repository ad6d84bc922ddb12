package transfer

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/beevik/etree"

	"github.com/aitherzero/configcore/pkg/errors"
)

// XML uses a uniform element shape so any payload round-trips:
//
//	<configuration>
//	  <entry key="currentEnvironment" type="string">default</entry>
//	  <entry key="modules" type="object">
//	    <entry key="labrunner" type="object">...</entry>
//	  </entry>
//	</configuration>
//
// Arrays hold <item> children. Types mirror JSON: string, number, bool,
// null, object, array.

const xmlRoot = "configuration"

func encodeXML(payload map[string]interface{}) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(xmlRoot)
	encodeXMLObject(root, payload)
	doc.Indent(2)
	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrExportFailed, "XML encoding failed")
	}
	return data, nil
}

func encodeXMLObject(parent *etree.Element, m map[string]interface{}) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		entry := parent.CreateElement("entry")
		entry.CreateAttr("key", k)
		encodeXMLValue(entry, m[k])
	}
}

func encodeXMLValue(el *etree.Element, v interface{}) {
	switch val := v.(type) {
	case nil:
		el.CreateAttr("type", "null")
	case bool:
		el.CreateAttr("type", "bool")
		el.SetText(strconv.FormatBool(val))
	case string:
		el.CreateAttr("type", "string")
		el.SetText(val)
	case float64:
		el.CreateAttr("type", "number")
		el.SetText(strconv.FormatFloat(val, 'f', -1, 64))
	case int:
		el.CreateAttr("type", "number")
		el.SetText(strconv.Itoa(val))
	case int64:
		el.CreateAttr("type", "number")
		el.SetText(strconv.FormatInt(val, 10))
	case map[string]interface{}:
		el.CreateAttr("type", "object")
		encodeXMLObject(el, val)
	case []interface{}:
		el.CreateAttr("type", "array")
		for _, item := range val {
			child := el.CreateElement("item")
			encodeXMLValue(child, item)
		}
	default:
		// Anything exotic degrades to its string form.
		el.CreateAttr("type", "string")
		el.SetText(fmt.Sprintf("%v", val))
	}
}

func decodeXML(data []byte) (map[string]interface{}, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(err, errors.ErrImportFailed, "XML parsing failed")
	}
	root := doc.SelectElement(xmlRoot)
	if root == nil {
		return nil, errors.Newf(errors.ErrImportFailed, "XML document has no <%s> root", xmlRoot)
	}
	return decodeXMLObject(root)
}

func decodeXMLObject(parent *etree.Element) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	for _, entry := range parent.SelectElements("entry") {
		key := entry.SelectAttrValue("key", "")
		if key == "" {
			return nil, errors.New(errors.ErrImportFailed, "XML entry is missing its key attribute")
		}
		value, err := decodeXMLValue(entry)
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

func decodeXMLValue(el *etree.Element) (interface{}, error) {
	switch el.SelectAttrValue("type", "string") {
	case "null":
		return nil, nil
	case "bool":
		b, err := strconv.ParseBool(el.Text())
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrImportFailed, "invalid bool %q", el.Text())
		}
		return b, nil
	case "number":
		f, err := strconv.ParseFloat(el.Text(), 64)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrImportFailed, "invalid number %q", el.Text())
		}
		return f, nil
	case "string":
		return el.Text(), nil
	case "object":
		return decodeXMLObject(el)
	case "array":
		var items []interface{}
		for _, child := range el.SelectElements("item") {
			item, err := decodeXMLValue(child)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	}
	return nil, errors.Newf(errors.ErrImportFailed, "unknown XML value type %q", el.SelectAttrValue("type", ""))
}
