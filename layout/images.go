package layout

import "github.com/ByLCY/gemdoc/links"

// imageTable 保存内嵌图片，跨多次布局保留，按 LinkID 归属。
type imageTable struct {
	images []*Image
}

// find 返回属于 link 的图片下标，没有时返回 -1。
func (t *imageTable) find(link links.ID) int {
	for i, img := range t.images {
		if img.LinkID == link {
			return i
		}
	}
	return -1
}

// put 注册图片；同一链接已有图片时原位替换，编号保持不变。
func (t *imageTable) put(img *Image) ImageID {
	if i := t.find(img.LinkID); i >= 0 {
		t.images[i] = img
		return ImageID(i + 1)
	}
	t.images = append(t.images, img)
	return ImageID(len(t.images))
}

// remove 删除属于 link 的图片，其后图片的编号依次前移。
func (t *imageTable) remove(link links.ID) bool {
	i := t.find(link)
	if i < 0 {
		return false
	}
	t.images = append(t.images[:i], t.images[i+1:]...)
	return true
}

func (t *imageTable) get(id ImageID) *Image {
	if id < 1 || int(id) > len(t.images) {
		return nil
	}
	return t.images[id-1]
}

func (t *imageTable) clear() {
	t.images = nil
}
